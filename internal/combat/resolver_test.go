package combat

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/samdwyer/emberfall/internal/gamedata"
)

func newRoster(names ...string) []*Combatant {
	roster := make([]*Combatant, len(names))
	for i, name := range names {
		roster[i] = NewCombatant(name, 30, 10, Stats{})
	}
	return roster
}

func TestFindTargetFirst(t *testing.T) {
	enemies := newRoster("goblin", "orc")
	ctx := NewContext(nil, enemies)

	target, err := ctx.FindTarget(SideEnemies, TargetFirst)
	if err != nil {
		t.Fatalf("FindTarget: %v", err)
	}
	if target != enemies[0] {
		t.Errorf("expected first enemy, got %s", target.Name())
	}

	// First ignores defeat, as the original rule does.
	enemies[0].TakeDamage(100)
	target, err = ctx.FindTarget(SideEnemies, TargetFirst)
	if err != nil || target != enemies[0] {
		t.Errorf("TargetFirst should still pick the defeated goblin, got %v, %v", target, err)
	}
}

func TestFindTargetEmptyRoster(t *testing.T) {
	ctx := NewContext(newRoster("wizard"), nil)

	target, err := ctx.FindTarget(SideEnemies, TargetFirst)
	if !errors.Is(err, ErrNoValidTarget) {
		t.Fatalf("expected ErrNoValidTarget, got %v", err)
	}
	if target != nil {
		t.Errorf("expected nil target, got %s", target.Name())
	}
}

func TestFindTargetLivingRules(t *testing.T) {
	enemies := newRoster("goblin", "orc", "shaman")
	ctx := NewContext(nil, enemies)

	enemies[0].TakeDamage(30)
	enemies[1].TakeDamage(5)
	enemies[2].TakeDamage(20)

	got, err := ctx.FindTarget(SideEnemies, TargetFirstAlive)
	if err != nil || got != enemies[1] {
		t.Errorf("TargetFirstAlive: got %v, %v", got, err)
	}

	got, err = ctx.FindTarget(SideEnemies, TargetLowestHealth)
	if err != nil || got != enemies[2] {
		t.Errorf("TargetLowestHealth: got %v, %v", got, err)
	}

	enemies[1].TakeDamage(30)
	enemies[2].TakeDamage(30)
	if _, err := ctx.FindTarget(SideEnemies, TargetFirstAlive); !errors.Is(err, ErrNoValidTarget) {
		t.Errorf("all defeated: expected ErrNoValidTarget, got %v", err)
	}
	if _, err := ctx.FindTarget(SideEnemies, TargetLowestHealth); !errors.Is(err, ErrNoValidTarget) {
		t.Errorf("all defeated: expected ErrNoValidTarget, got %v", err)
	}
}

func TestLowestHealthTiesGoToRosterOrder(t *testing.T) {
	allies := newRoster("wizard", "cleric")
	ctx := NewContext(allies, nil)

	got, err := ctx.FindTarget(SideAllies, TargetLowestHealth)
	if err != nil || got != allies[0] {
		t.Errorf("expected wizard on a tie, got %v, %v", got, err)
	}
}

func TestFireballScenario(t *testing.T) {
	// Health 30, Fireball deals 30: the goblin ends at exactly zero.
	enemies := newRoster("goblin")
	ctx := NewContext(newRoster("wizard"), enemies)

	eff, err := Fireball{}.Execute(ctx)
	if err != nil {
		t.Fatalf("Fireball: %v", err)
	}
	if enemies[0].Health() != 0 {
		t.Errorf("expected health 0, got %d", enemies[0].Health())
	}
	if eff.Damage != 30 || !eff.Defeated || eff.Target != "goblin" || eff.Ability != "fireball" {
		t.Errorf("unexpected effect: %+v", eff)
	}

	// A second cast hits the same defeated goblin and deals nothing.
	eff, err = Fireball{}.Execute(ctx)
	if err != nil {
		t.Fatalf("second Fireball: %v", err)
	}
	if eff.Damage != 0 || eff.Defeated || enemies[0].Health() != 0 {
		t.Errorf("second cast: %+v, health %d", eff, enemies[0].Health())
	}
}

func TestFireballWithoutEnemies(t *testing.T) {
	ctx := NewContext(newRoster("wizard"), nil)

	_, err := Fireball{}.Execute(ctx)
	if !errors.Is(err, ErrNoValidTarget) {
		t.Fatalf("expected ErrNoValidTarget, got %v", err)
	}
}

func TestContextCopiesRosterSlices(t *testing.T) {
	enemies := newRoster("goblin", "orc")
	ctx := NewContext(nil, enemies)
	enemies[0] = NewCombatant("dragon", 500, 0, Stats{})

	target, _ := ctx.FindTarget(SideEnemies, TargetFirst)
	if target.Name() != "goblin" {
		t.Errorf("context saw caller's slice change: %s", target.Name())
	}

	view := ctx.Roster(SideEnemies)
	view[0] = nil
	if ctx.Living(SideEnemies) != 2 {
		t.Errorf("Roster view mutated the context")
	}
}

func TestDefAbilities(t *testing.T) {
	allies := newRoster("wizard", "cleric")
	enemies := newRoster("goblin", "orc")
	ctx := NewContext(allies, enemies)
	allies[1].TakeDamage(25)
	enemies[0].TakeDamage(30)

	tests := []struct {
		def   gamedata.AbilityDef
		check func(t *testing.T, eff Effect)
	}{
		{
			gamedata.AbilityDef{ID: "frost_bolt", EffectType: gamedata.EffectDamage, TargetType: gamedata.TargetFirstAlive, BasePower: 18},
			func(t *testing.T, eff Effect) {
				if eff.Target != "orc" || eff.Damage != 18 || enemies[1].Health() != 12 {
					t.Errorf("frost_bolt: %+v", eff)
				}
			},
		},
		{
			gamedata.AbilityDef{ID: "mend", EffectType: gamedata.EffectHeal, TargetType: gamedata.TargetLowestHealth, BasePower: 20},
			func(t *testing.T, eff Effect) {
				if eff.Target != "cleric" || eff.Healing != 20 || eff.Side != SideAllies {
					t.Errorf("mend: %+v", eff)
				}
			},
		},
		{
			gamedata.AbilityDef{ID: "mana_burn", EffectType: gamedata.EffectDrain, TargetType: gamedata.TargetFirstAlive, BasePower: 15},
			func(t *testing.T, eff Effect) {
				if eff.Target != "orc" || eff.ManaDrained != 10 || enemies[1].Mana() != 0 {
					t.Errorf("mana_burn: %+v", eff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.def.ID, func(t *testing.T) {
			a, err := NewDefAbility(tt.def)
			if err != nil {
				t.Fatalf("NewDefAbility: %v", err)
			}
			eff, err := a.Execute(ctx)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if eff.Ability != tt.def.ID {
				t.Errorf("effect ability %q, want %q", eff.Ability, tt.def.ID)
			}
			tt.check(t, eff)
		})
	}
}

func TestNewDefAbilityRejectsBadDefs(t *testing.T) {
	tests := []gamedata.AbilityDef{
		{ID: "", EffectType: gamedata.EffectDamage, TargetType: gamedata.TargetFirst},
		{ID: "x", EffectType: "explode", TargetType: gamedata.TargetFirst},
		{ID: "y", EffectType: gamedata.EffectDamage, TargetType: "random"},
	}
	for _, def := range tests {
		if _, err := NewDefAbility(def); err == nil {
			t.Errorf("expected error for %+v", def)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("fireball"); !ok {
		t.Fatal("fireball should be built in")
	}

	if err := r.RegisterDefs(gamedata.MustLoadAbilityRegistry().All()); err != nil {
		t.Fatalf("RegisterDefs: %v", err)
	}
	if r.Count() != len(r.Names()) {
		t.Errorf("Count %d != len(Names) %d", r.Count(), len(r.Names()))
	}
	if err := r.Register(Fireball{}); err == nil {
		t.Error("duplicate registration should fail")
	}

	names := r.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names not sorted: %v", names)
		}
	}
}

func TestResolverCast(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	resolver := NewResolver(NewRegistry(), nil)
	enemies := newRoster("goblin")
	actx := NewContext(nil, enemies)

	eff, err := resolver.Cast(context.Background(), "fireball", actx)
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if eff.Damage != 30 {
		t.Errorf("expected 30 damage, got %d", eff.Damage)
	}

	if _, err := resolver.Cast(context.Background(), "meteor", actx); !errors.Is(err, ErrUnknownAbility) {
		t.Errorf("expected ErrUnknownAbility, got %v", err)
	}

	_, err = resolver.Cast(context.Background(), "fireball", NewContext(nil, nil))
	if !errors.Is(err, ErrNoValidTarget) {
		t.Errorf("expected ErrNoValidTarget, got %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	for _, s := range spans {
		if s.Name() != "ability.execute" {
			t.Errorf("unexpected span %q", s.Name())
		}
	}
}
