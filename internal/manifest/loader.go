package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/emberfall/internal/asset"
	"github.com/samdwyer/emberfall/internal/logger"
	"github.com/samdwyer/emberfall/internal/telemetry"
)

// SourcePolicy decides what a load cycle does with a source file that fails to load.
type SourcePolicy int

const (
	// SourceAbort fails the cycle if any source file fails.
	SourceAbort SourcePolicy = iota
	// SourceSkip logs the failure and merges the remaining files.
	SourceSkip
)

// String returns the configuration spelling of the policy.
func (p SourcePolicy) String() string {
	switch p {
	case SourceAbort:
		return "abort"
	case SourceSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseSourcePolicy parses "abort" or "skip".
func ParseSourcePolicy(s string) (SourcePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort", "":
		return SourceAbort, nil
	case "skip":
		return SourceSkip, nil
	default:
		return SourceAbort, fmt.Errorf("unknown source policy %q", s)
	}
}

// Status is the state of a load cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Loader.
type Options struct {
	Convert ConvertOptions
	Sources SourcePolicy
	Logger  *slog.Logger
}

// Loader runs item manifest load cycles on top of an asset server. It is driven by the
// host calling Tick once per frame and is not safe for concurrent use.
type Loader struct {
	server *asset.Server
	store  *Store
	opts   Options
	log    *slog.Logger

	handles []asset.Handle
	status  Status
	err     error
	loadID  string
	started time.Time
	span    trace.Span
}

// NewLoader creates a loader publishing into store. The server must have a RawLoader
// registered; NewLoader registers one.
func NewLoader(server *asset.Server, store *Store, opts Options) *Loader {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Convert.Logger == nil {
		opts.Convert.Logger = opts.Logger
	}
	server.RegisterLoader(RawLoader{})
	return &Loader{
		server: server,
		store:  store,
		opts:   opts,
		log:    opts.Logger,
	}
}

// Request adds source files to the load. If no cycle is in progress a new one starts.
func (l *Loader) Request(ctx context.Context, paths ...string) {
	if l.status != StatusLoading {
		l.begin(ctx)
	}
	for _, p := range paths {
		h := l.server.Load(p)
		if slices.Contains(l.handles, h) {
			continue
		}
		l.handles = append(l.handles, h)
	}
	l.span.SetAttributes(attribute.Int("manifest.sources", len(l.handles)))
}

func (l *Loader) begin(ctx context.Context) {
	l.endSpan()
	l.handles = nil
	l.err = nil
	l.status = StatusLoading
	l.started = time.Now()
	ctx, l.loadID = logger.WithLoadID(ctx)
	l.log = logger.FromContext(ctx, l.opts.Logger)

	_, l.span = telemetry.Tracer("manifest").Start(ctx, "manifest.load",
		trace.WithAttributes(attribute.String("manifest.load_id", l.loadID)))
	l.log.Info("item manifest load started")
}

// Status returns the state of the current cycle.
func (l *Loader) Status() Status { return l.status }

// Err returns the *LoadError of a failed cycle.
func (l *Loader) Err() error { return l.err }

// LoadID returns the identifier of the current or last cycle.
func (l *Loader) LoadID() string { return l.loadID }

// Manifest returns the published manifest.
func (l *Loader) Manifest() *ItemManifest { return l.store.Current() }

// Reset abandons the current cycle. In-flight reads are orphaned.
func (l *Loader) Reset() {
	l.endSpan()
	l.handles = nil
	l.status = StatusIdle
	l.err = nil
}

// Tick checks whether every requested source has resolved and, on the first tick where
// they all have, merges them in request order, converts and publishes.
func (l *Loader) Tick(ctx context.Context) Status {
	if l.status != StatusLoading {
		return l.status
	}
	for _, h := range l.handles {
		if !l.server.State(h).Resolved() {
			return l.status
		}
	}

	merged, errs := l.collect()
	if len(errs) > 0 {
		l.fail(errs)
		return l.status
	}

	ctx = trace.ContextWithSpan(ctx, l.span)
	_, span := telemetry.Tracer("manifest").Start(ctx, "manifest.convert")
	span.SetAttributes(
		attribute.Int("manifest.raw_items", merged.Len()),
		attribute.String("manifest.duplicate_policy", l.opts.Convert.Duplicates.String()),
	)
	opts := l.opts.Convert
	opts.Logger = l.log
	m, err := Convert(merged, l.server, opts)
	if err != nil {
		span.SetStatus(codes.Error, "conversion failed")
		span.End()
		l.fail(flatten(err))
		return l.status
	}
	span.SetAttributes(attribute.Int("manifest.items", m.Len()))
	span.End()

	l.store.Publish(m)
	l.status = StatusReady
	l.span.SetAttributes(attribute.Int("manifest.items", m.Len()))
	l.endSpan()
	l.log.Info("item manifest published",
		"items", m.Len(),
		"sources", len(l.handles),
		"duration", time.Since(l.started))
	return l.status
}

// collect gathers decoded sources in request order, applying the source policy.
func (l *Loader) collect() (RawItemManifest, []error) {
	var (
		merged RawItemManifest
		errs   []error
	)
	for _, h := range l.handles {
		if l.server.State(h) == asset.StateFailed {
			err := sourceError(h, l.server.Err(h))
			if l.opts.Sources == SourceSkip {
				l.log.Warn("skipping item source", "path", h.Path(), "error", err)
				continue
			}
			errs = append(errs, err)
			continue
		}
		raw, ok := asset.Get[RawItemManifest](l.server, h)
		if !ok {
			errs = append(errs, &SourceError{Path: h.Path(), Err: errors.New("not an item source file")})
			continue
		}
		merged.MergeFrom(raw)
	}
	return merged, errs
}

func (l *Loader) fail(errs []error) {
	l.err = &LoadError{Errs: errs}
	l.status = StatusFailed
	if l.span != nil {
		l.span.RecordError(l.err)
		l.span.SetStatus(codes.Error, "load failed")
	}
	l.endSpan()
	l.log.Error("item manifest load failed", "errors", len(errs), "error", l.err)
}

func (l *Loader) endSpan() {
	if l.span != nil {
		l.span.End()
		l.span = nil
	}
}

func sourceError(h asset.Handle, err error) error {
	var se *SourceError
	if errors.As(err, &se) {
		return se
	}
	return &SourceError{Path: h.Path(), Err: err}
}

func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
