package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/emberfall/internal/telemetry"
)

// Resolver looks abilities up by name and executes them with tracing and logging.
type Resolver struct {
	registry *Registry
	logger   *slog.Logger
}

// NewResolver creates a resolver over registry. A nil logger uses slog.Default().
func NewResolver(registry *Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{registry: registry, logger: logger}
}

// Registry returns the abilities the resolver can cast.
func (r *Resolver) Registry() *Registry { return r.registry }

// Cast executes the named ability against actx.
func (r *Resolver) Cast(ctx context.Context, name string, actx *Context) (Effect, error) {
	_, span := telemetry.Tracer("combat").Start(ctx, "ability.execute")
	defer span.End()
	span.SetAttributes(attribute.String("ability.name", name))

	ability, ok := r.registry.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownAbility, name)
		span.SetStatus(codes.Error, err.Error())
		return Effect{}, err
	}

	eff, err := ability.Execute(actx)
	if err != nil {
		if errors.Is(err, ErrNoValidTarget) {
			span.SetAttributes(attribute.Bool("ability.no_target", true))
			r.logger.Debug("ability found no target", "ability", name, "error", err)
		} else {
			span.SetStatus(codes.Error, err.Error())
		}
		return eff, err
	}

	span.SetAttributes(
		attribute.String("ability.target", eff.Target),
		attribute.String("ability.side", eff.Side.String()),
		attribute.Int64("ability.damage", int64(eff.Damage)),
		attribute.Int64("ability.healing", int64(eff.Healing)),
		attribute.Int64("ability.mana_drained", int64(eff.ManaDrained)),
		attribute.Bool("ability.defeated", eff.Defeated),
	)
	r.logger.Debug("ability executed",
		"ability", name,
		"target", eff.Target,
		"damage", eff.Damage,
		"healing", eff.Healing,
		"mana_drained", eff.ManaDrained,
		"defeated", eff.Defeated)
	return eff, nil
}
