package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/emberfall/internal/asset"
	"github.com/samdwyer/emberfall/internal/combat"
	"github.com/samdwyer/emberfall/internal/config"
	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/manifest"
	"github.com/samdwyer/emberfall/internal/telemetry"
)

// ErrBattleInProgress is returned by StartBattle while another battle is ongoing.
var ErrBattleInProgress = errors.New("a battle is already in progress")

// Game holds the entire host state.
type Game struct {
	cfg     config.Config
	content fs.FS
	log     *slog.Logger

	server *asset.Server
	store  *manifest.Store
	loader *manifest.Loader

	resolver   *combat.Resolver
	combatants *gamedata.CombatantRegistry

	phase  Phase
	battle *Battle
}

// New creates a host reading item content from content. cfg must already be validated.
func New(cfg config.Config, content fs.FS, logger *slog.Logger) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
	}

	server := asset.NewServer(content, logger)
	server.RegisterLoader(asset.ImageLoader{})
	store := &manifest.Store{}
	opts := cfg.ManifestOptions()
	opts.Logger = logger

	abilities, err := gamedata.LoadAbilities()
	if err != nil {
		return nil, fmt.Errorf("load abilities: %w", err)
	}
	registry := combat.NewRegistry()
	if err := registry.RegisterDefs(abilities); err != nil {
		return nil, fmt.Errorf("register abilities: %w", err)
	}
	combatants, err := gamedata.LoadCombatantRegistry()
	if err != nil {
		return nil, fmt.Errorf("load combatants: %w", err)
	}

	return &Game{
		cfg:        cfg,
		content:    content,
		log:        logger,
		server:     server,
		store:      store,
		loader:     manifest.NewLoader(server, store, opts),
		resolver:   combat.NewResolver(registry, logger),
		combatants: combatants,
		phase:      PhaseLoading,
	}, nil
}

// Load discovers every item source file under root and starts a load cycle for them.
func (g *Game) Load(ctx context.Context, root string) error {
	paths, err := manifest.Discover(g.content, root)
	if err != nil {
		g.phase = PhaseFailed
		return err
	}
	g.log.Info("item sources discovered", "root", root, "count", len(paths))
	g.loader.Request(ctx, paths...)
	g.phase = PhaseLoading
	return nil
}

// Tick advances one frame: asset reads finished since the last frame are published, then
// the load cycle checks whether it can convert.
func (g *Game) Tick(ctx context.Context) Phase {
	g.server.Tick()
	if g.phase == PhaseLoading {
		switch g.loader.Tick(ctx) {
		case manifest.StatusReady:
			g.phase = PhaseReady
		case manifest.StatusFailed:
			g.phase = PhaseFailed
		}
	}
	return g.Phase()
}

// Run ticks every TickInterval until the manifest is published and every sprite it
// requested has resolved, the load fails, LoadTimeout passes, or ctx is cancelled.
func (g *Game) Run(ctx context.Context) error {
	ctx, span := telemetry.Tracer("game").Start(ctx, "game.run")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.cfg.LoadTimeout)
	defer cancel()

	ticker := time.NewTicker(g.cfg.TickInterval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			span.SetAttributes(attribute.Int("game.frames", frames))
			return fmt.Errorf("content did not finish loading after %d frames: %w", frames, ctx.Err())
		case <-ticker.C:
		}

		frames++
		switch g.Tick(ctx) {
		case PhaseFailed:
			span.SetAttributes(attribute.Int("game.frames", frames))
			if err := g.loader.Err(); err != nil {
				return err
			}
			return errors.New("item manifest load failed")
		case PhaseLoading:
			continue
		}
		if g.server.Pending() == 0 {
			span.SetAttributes(attribute.Int("game.frames", frames))
			return nil
		}
	}
}

// Phase returns what the host is doing.
func (g *Game) Phase() Phase {
	if g.phase == PhaseReady && g.battle != nil && g.battle.Outcome() == OutcomeOngoing {
		return PhaseCombat
	}
	return g.phase
}

// Manifest returns the published item manifest, or nil before the first successful load.
func (g *Game) Manifest() *manifest.ItemManifest { return g.store.Current() }

// Err returns the failure of the last load cycle.
func (g *Game) Err() error { return g.loader.Err() }

// Assets exposes the asset server for sprite lookups.
func (g *Game) Assets() *asset.Server { return g.server }

// Abilities returns the names of every castable ability.
func (g *Game) Abilities() []string { return g.resolver.Registry().Names() }

// StartBattle sets up a battle between the combatants with the given definition IDs.
// The same ID may appear more than once; each occurrence is a separate combatant.
func (g *Game) StartBattle(ctx context.Context, allyIDs, enemyIDs []string) (*Battle, error) {
	if g.battle != nil && g.battle.Outcome() == OutcomeOngoing {
		return nil, ErrBattleInProgress
	}
	allies, err := g.combatants.Lookup(allyIDs)
	if err != nil {
		return nil, fmt.Errorf("allies: %w", err)
	}
	enemies, err := g.combatants.Lookup(enemyIDs)
	if err != nil {
		return nil, fmt.Errorf("enemies: %w", err)
	}

	g.battle = newBattle(ctx, g.resolver, g.log, allies, enemies)
	g.log.Info("battle started", "allies", len(allies), "enemies", len(enemies))
	return g.battle, nil
}
