// Package main is the entry point for Emberfall.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/samdwyer/emberfall/data"
	"github.com/samdwyer/emberfall/internal/combat"
	"github.com/samdwyer/emberfall/internal/config"
	"github.com/samdwyer/emberfall/internal/game"
	"github.com/samdwyer/emberfall/internal/logger"
	"github.com/samdwyer/emberfall/internal/manifest"
	"github.com/samdwyer/emberfall/internal/telemetry"
)

// maxRounds bounds the scripted battle.
const maxRounds = 20

func main() {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	lg := logger.New(cfg.Logger(), os.Stderr)
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.TelemetryEnabled {
		setupOTelEnv()
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			lg.Warn("telemetry setup failed, running without tracing", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					lg.Error("telemetry shutdown failed", "error", err)
				}
			}()
		}
	}

	if err := run(ctx, cfg, lg, os.Stdout); err != nil {
		var loadErr *manifest.LoadError
		if errors.As(err, &loadErr) {
			for _, e := range loadErr.Errs {
				lg.Error("item content problem", "error", e)
			}
		}
		lg.Error("emberfall failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, lg *slog.Logger, out io.Writer) error {
	var content fs.FS = data.FS()
	if cfg.ContentDir != "" {
		content = os.DirFS(cfg.ContentDir)
	}

	g, err := game.New(cfg, content, lg)
	if err != nil {
		return err
	}
	if err := g.Load(ctx, data.ItemRoot); err != nil {
		return err
	}
	if err := g.Run(ctx); err != nil {
		return err
	}

	printManifest(out, g)
	return playBattle(ctx, g, out)
}

func printManifest(out io.Writer, g *game.Game) {
	m := g.Manifest()
	fmt.Fprintf(out, "Item manifest: %d items\n", m.Len())
	for _, item := range m.Items() {
		sprite := "-"
		if !item.Sprite.IsZero() {
			sprite = fmt.Sprintf("%s (%s)", item.Sprite.Path(), g.Assets().State(item.Sprite))
		}
		fmt.Fprintf(out, "  %s  %-16s value=%-4d weight=%-5.2f stack=%-3d sprite=%s\n",
			item.ID, item.Name, item.Value, item.Weight, item.MaxStack, sprite)
	}
}

// playBattle runs a fixed encounter: each ally cycles through its abilities, then the
// enemies respond, until one side falls.
func playBattle(ctx context.Context, g *game.Game, out io.Writer) error {
	b, err := g.StartBattle(ctx,
		[]string{"wizard", "cleric"},
		[]string{"goblin", "shaman", "orc"})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nBattle: Wizard and Cleric against Goblin, Goblin Shaman and Orc")

	for round := 0; round < maxRounds && b.Outcome() == game.OutcomeOngoing; round++ {
		fmt.Fprintf(out, "Round %d\n", round+1)
		for _, ally := range b.Allies() {
			if ally.IsDefeated() || len(ally.Abilities) == 0 || b.Outcome() != game.OutcomeOngoing {
				continue
			}
			ability := ally.Abilities[round%len(ally.Abilities)]
			eff, err := b.Cast(ctx, ability)
			if errors.Is(err, combat.ErrNoValidTarget) {
				continue
			}
			if err != nil {
				return err
			}
			printEffect(out, ally.Name(), eff)
		}
		if b.Outcome() != game.OutcomeOngoing {
			break
		}
		actions, err := b.EnemyTurn(ctx)
		if err != nil {
			return err
		}
		for _, a := range actions {
			printEffect(out, a.Actor, a.Effect)
		}
	}
	fmt.Fprintf(out, "Outcome: %s after %d turns\n", b.Outcome(), b.Turns())
	return nil
}

func printEffect(out io.Writer, actor string, eff combat.Effect) {
	switch {
	case eff.Damage > 0 || eff.Side == combat.SideEnemies && eff.ManaDrained == 0:
		fmt.Fprintf(out, "  %s uses %s on %s for %d damage", actor, eff.Ability, eff.Target, eff.Damage)
	case eff.ManaDrained > 0:
		fmt.Fprintf(out, "  %s uses %s on %s, draining %d mana", actor, eff.Ability, eff.Target, eff.ManaDrained)
	default:
		fmt.Fprintf(out, "  %s uses %s on %s, healing %d", actor, eff.Ability, eff.Target, eff.Healing)
	}
	if eff.Defeated {
		fmt.Fprint(out, " - defeated!")
	}
	fmt.Fprintln(out)
}

// setupOTelEnv points the OTLP exporter at Honeycomb when an API key is present.
func setupOTelEnv() {
	apiKey := os.Getenv("HONEYCOMB_EMBERFALL_API_KEY")
	if apiKey == "" {
		return
	}
	dataset := os.Getenv("HONEYCOMB_EMBERFALL_DATASET")
	if dataset == "" {
		dataset = "emberfall"
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")
	}
	os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
		fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
}
