package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"github.com/samdwyer/emberfall/data"
	"github.com/samdwyer/emberfall/internal/asset"
	"github.com/samdwyer/emberfall/internal/config"
	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/manifest"
)

func testConfig() config.Config {
	return config.Config{
		DuplicatePolicy: "fail",
		SourcePolicy:    "abort",
		TickInterval:    time.Millisecond,
		LoadTimeout:     2 * time.Second,
	}
}

func newTestGameFS(t *testing.T, cfg config.Config, content fstest.MapFS) *Game {
	t.Helper()
	g, err := New(cfg, content, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g := newTestGameFS(t, testConfig(), fstest.MapFS{})
	g.phase = PhaseReady
	return g
}

func TestRunLoadsEmbeddedContent(t *testing.T) {
	ctx := context.Background()
	g, err := New(testConfig(), data.FS(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if g.Phase() != PhaseLoading {
		t.Fatalf("Phase() = %s, want loading", g.Phase())
	}
	if err := g.Load(ctx, data.ItemRoot); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if g.Phase() != PhaseReady {
		t.Errorf("Phase() = %s, want ready", g.Phase())
	}
	m := g.Manifest()
	if m.Len() != 8 {
		t.Errorf("manifest has %d items, want 8", m.Len())
	}

	potion, ok := m.GetByName("Healing Potion")
	if !ok {
		t.Fatal("Healing Potion missing from manifest")
	}
	if potion.ID != manifest.IDFor("Healing Potion") || potion.Value != 10 || potion.MaxStack != 20 {
		t.Errorf("Healing Potion = %+v", potion)
	}
	if state := g.Assets().State(potion.Sprite); state != asset.StateLoaded {
		t.Errorf("Healing Potion sprite state = %s, want loaded", state)
	}
	info, ok := asset.Get[asset.ImageInfo](g.Assets(), potion.Sprite)
	if !ok || info.Width != 8 {
		t.Errorf("Healing Potion sprite = %+v, %v", info, ok)
	}

	amulet, ok := m.GetByName("Cursed Amulet")
	if !ok || amulet.Value != -15 {
		t.Errorf("Cursed Amulet = %+v, %v; want value -15", amulet, ok)
	}
	ration, _ := m.GetByName("Trail Ration")
	if !ration.Sprite.IsZero() {
		t.Errorf("Trail Ration has sprite %s, want none", ration.Sprite)
	}
}

func TestRunReportsDuplicateNames(t *testing.T) {
	content := fstest.MapFS{
		"items/a.item.yaml": {Data: []byte("- {name: Healing Potion, value: 10, weight: 0.5, max_stack: 20}\n")},
		"items/b.item.json": {Data: []byte(`[{"name": "Healing Potion", "value": 25, "weight": 0.5, "max_stack": 20}]`)},
	}

	t.Run("fail", func(t *testing.T) {
		ctx := context.Background()
		g := newTestGameFS(t, testConfig(), content)
		if err := g.Load(ctx, "items"); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		err := g.Run(ctx)
		if !errors.Is(err, manifest.ErrDuplicateItemName) {
			t.Fatalf("Run() error = %v, want ErrDuplicateItemName", err)
		}
		if g.Phase() != PhaseFailed {
			t.Errorf("Phase() = %s, want failed", g.Phase())
		}
		if g.Manifest() != nil {
			t.Error("a failed load must not publish a manifest")
		}
		if !errors.Is(g.Err(), manifest.ErrDuplicateItemName) {
			t.Errorf("Err() = %v", g.Err())
		}
	})

	t.Run("last-wins", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig()
		cfg.DuplicatePolicy = "last-wins"
		g := newTestGameFS(t, cfg, content)
		if err := g.Load(ctx, "items"); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if err := g.Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		item, ok := g.Manifest().Get(manifest.IDFor("Healing Potion"))
		if !ok || item.Value != 25 {
			t.Errorf("Healing Potion = %+v, %v; want value 25", item, ok)
		}
	})
}

func TestLoadMissingRoot(t *testing.T) {
	g := newTestGameFS(t, testConfig(), fstest.MapFS{})
	if err := g.Load(context.Background(), "items"); err == nil {
		t.Fatal("Load() of a missing root should fail")
	}
	if g.Phase() != PhaseFailed {
		t.Errorf("Phase() = %s, want failed", g.Phase())
	}
}

func TestRunTimesOut(t *testing.T) {
	cfg := testConfig()
	cfg.LoadTimeout = 20 * time.Millisecond
	g := newTestGameFS(t, cfg, fstest.MapFS{})

	// Nothing was requested, so the load never completes.
	err := g.Run(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
}

func TestStartBattlePhases(t *testing.T) {
	ctx := context.Background()
	g := newTestGame(t)

	if _, err := g.StartBattle(ctx, []string{"wizard"}, []string{"dragon"}); !errors.Is(err, gamedata.ErrUnknownCombatant) {
		t.Errorf("StartBattle() error = %v, want ErrUnknownCombatant", err)
	}

	b, err := g.StartBattle(ctx, []string{"wizard"}, []string{"goblin"})
	if err != nil {
		t.Fatalf("StartBattle() error = %v", err)
	}
	if g.Phase() != PhaseCombat {
		t.Errorf("Phase() = %s, want combat", g.Phase())
	}
	if _, err := g.StartBattle(ctx, []string{"wizard"}, []string{"goblin"}); !errors.Is(err, ErrBattleInProgress) {
		t.Errorf("second StartBattle() error = %v, want ErrBattleInProgress", err)
	}

	if _, err := b.Cast(ctx, "fireball"); err != nil {
		t.Fatalf("Cast() error = %v", err)
	}
	if b.Outcome() != OutcomeVictory {
		t.Fatalf("Outcome() = %s, want victory", b.Outcome())
	}
	if g.Phase() != PhaseReady {
		t.Errorf("Phase() after victory = %s, want ready", g.Phase())
	}
}

func TestStartBattleWhileLoading(t *testing.T) {
	ctx := context.Background()
	g := newTestGameFS(t, testConfig(), fstest.MapFS{})
	if g.Phase() != PhaseLoading {
		t.Fatalf("Phase() = %s, want loading", g.Phase())
	}

	first, err := g.StartBattle(ctx, []string{"wizard"}, []string{"orc"})
	if err != nil {
		t.Fatalf("StartBattle() error = %v", err)
	}
	if _, err := g.StartBattle(ctx, []string{"cleric"}, []string{"goblin"}); !errors.Is(err, ErrBattleInProgress) {
		t.Errorf("second StartBattle() error = %v, want ErrBattleInProgress", err)
	}
	if first.Outcome() != OutcomeOngoing {
		t.Errorf("first battle outcome = %s, want ongoing", first.Outcome())
	}
	if g.Phase() != PhaseLoading {
		t.Errorf("Phase() = %s, want loading while content loads", g.Phase())
	}
}

func TestAbilities(t *testing.T) {
	g := newTestGame(t)
	names := g.Abilities()
	want := []string{"fireball", "frost_bolt", "mana_burn", "mend", "smite"}
	if len(names) != len(want) {
		t.Fatalf("Abilities() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Abilities()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
