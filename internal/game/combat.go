package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/emberfall/internal/combat"
	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/telemetry"
)

// ErrBattleOver is returned when acting in a battle that already has an outcome.
var ErrBattleOver = errors.New("battle is over")

// Outcome is the result of a battle so far.
type Outcome int

const (
	OutcomeOngoing Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// attackName labels the basic attack enemies fall back to when they know no ability.
const attackName = "attack"

// Action is one effect together with the fighter who caused it.
type Action struct {
	Actor string
	combat.Effect
}

// Fighter is a combatant together with the abilities its definition grants.
type Fighter struct {
	*combat.Combatant
	Abilities []string
}

// Battle is one encounter between the allied party and a group of enemies.
type Battle struct {
	resolver *combat.Resolver
	log      *slog.Logger

	allies  []Fighter
	enemies []Fighter
	party   *combat.Context // allies acting on enemies
	foes    *combat.Context // enemies acting on allies

	outcome Outcome
	turns   int
}

func newFighters(defs []*gamedata.CombatantDef) ([]Fighter, []*combat.Combatant) {
	fighters := make([]Fighter, len(defs))
	roster := make([]*combat.Combatant, len(defs))
	for i, def := range defs {
		cb := combat.NewCombatant(def.Name, def.Health, def.Mana, combat.Stats{
			Strength:     def.Strength,
			Vitality:     def.Vitality,
			Dexterity:    def.Dexterity,
			Intelligence: def.Intelligence,
		})
		fighters[i] = Fighter{Combatant: cb, Abilities: append([]string(nil), def.Abilities...)}
		roster[i] = cb
	}
	return fighters, roster
}

func newBattle(ctx context.Context, resolver *combat.Resolver, log *slog.Logger, allyDefs, enemyDefs []*gamedata.CombatantDef) *Battle {
	allies, allyRoster := newFighters(allyDefs)
	enemies, enemyRoster := newFighters(enemyDefs)

	_, span := telemetry.Tracer("combat").Start(ctx, "combat.start")
	span.SetAttributes(
		attribute.Int("party_size", len(allies)),
		attribute.Int("enemy_count", len(enemies)),
	)
	span.End()

	return &Battle{
		resolver: resolver,
		log:      log,
		allies:   allies,
		enemies:  enemies,
		party:    combat.NewContext(allyRoster, enemyRoster),
		foes:     combat.NewContext(enemyRoster, allyRoster),
	}
}

// Allies returns the allied fighters in roster order.
func (b *Battle) Allies() []Fighter { return b.allies }

// Enemies returns the enemy fighters in roster order.
func (b *Battle) Enemies() []Fighter { return b.enemies }

// Outcome reports whether the battle is still going.
func (b *Battle) Outcome() Outcome { return b.outcome }

// Turns returns how many actions have been taken.
func (b *Battle) Turns() int { return b.turns }

// Cast has the party use the named ability. When the ability finds no valid target because
// no enemy is left standing, the battle ends in victory and the error is still returned.
func (b *Battle) Cast(ctx context.Context, ability string) (combat.Effect, error) {
	if b.outcome != OutcomeOngoing {
		return combat.Effect{}, fmt.Errorf("%w: %s", ErrBattleOver, b.outcome)
	}

	eff, err := b.resolver.Cast(ctx, ability, b.party)
	if err != nil && !errors.Is(err, combat.ErrNoValidTarget) {
		return eff, err
	}
	b.turns++
	if err != nil {
		if b.party.Living(combat.SideEnemies) == 0 {
			b.finish(ctx, OutcomeVictory)
		}
		return eff, err
	}
	b.settle(ctx)
	return eff, nil
}

// EnemyTurn lets every standing enemy act once, in roster order. Enemies use the first
// ability they know and otherwise strike the weakest ally for their strength.
func (b *Battle) EnemyTurn(ctx context.Context) ([]Action, error) {
	if b.outcome != OutcomeOngoing {
		return nil, fmt.Errorf("%w: %s", ErrBattleOver, b.outcome)
	}

	var actions []Action
	for _, enemy := range b.enemies {
		if enemy.IsDefeated() {
			continue
		}
		eff, err := b.enemyAct(ctx, enemy)
		if err != nil && !errors.Is(err, combat.ErrNoValidTarget) {
			return actions, err
		}
		b.turns++
		if err == nil {
			actions = append(actions, Action{Actor: enemy.Name(), Effect: eff})
		}
		if b.settle(ctx) {
			break
		}
	}
	return actions, nil
}

func (b *Battle) enemyAct(ctx context.Context, enemy Fighter) (combat.Effect, error) {
	for _, name := range enemy.Abilities {
		if _, ok := b.resolver.Registry().Get(name); ok {
			return b.resolver.Cast(ctx, name, b.foes)
		}
	}
	eff, err := b.foes.DamageEnemy(combat.TargetLowestHealth, enemy.Stats().Strength)
	eff.Ability = attackName
	return eff, err
}

// settle ends the battle when one side has nobody standing and reports whether it did.
func (b *Battle) settle(ctx context.Context) bool {
	switch {
	case b.party.Living(combat.SideEnemies) == 0:
		b.finish(ctx, OutcomeVictory)
	case b.party.Living(combat.SideAllies) == 0:
		b.finish(ctx, OutcomeDefeat)
	default:
		return false
	}
	return true
}

func (b *Battle) finish(ctx context.Context, outcome Outcome) {
	b.outcome = outcome

	var remaining uint64
	for _, a := range b.allies {
		remaining += uint64(a.Health())
	}
	_, span := telemetry.Tracer("combat").Start(ctx, "combat.end")
	span.SetAttributes(
		attribute.String("outcome", outcome.String()),
		attribute.Int("turns_taken", b.turns),
		attribute.Int64("party_health_remaining", int64(remaining)),
	)
	span.End()
	b.log.Info("battle ended", "outcome", outcome.String(), "turns", b.turns)
}
