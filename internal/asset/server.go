package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrNotLoaded is returned when asking for the contents of an asset that is not loaded.
var ErrNotLoaded = errors.New("asset not loaded")

// Loader decodes the bytes of files with the extensions it claims.
// Extensions include the leading dot and may be compound (".item.yaml").
type Loader interface {
	Extensions() []string
	Decode(path string, data []byte) (any, error)
}

type entry struct {
	handle Handle
	state  LoadState
	data   []byte
	value  any
	err    error
}

type result struct {
	id    uint64
	data  []byte
	value any
	err   error
}

// Server resolves asset requests against a filesystem.
type Server struct {
	fsys   fs.FS
	logger *slog.Logger

	mu        sync.Mutex
	nextID    uint64
	byPath    map[string]uint64
	entries   map[uint64]*entry
	completed []result
	loaders   map[string]Loader
}

// NewServer creates a server reading from fsys. A nil logger uses slog.Default().
func NewServer(fsys fs.FS, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		fsys:    fsys,
		logger:  logger,
		byPath:  make(map[string]uint64),
		entries: make(map[uint64]*entry),
		loaders: make(map[string]Loader),
	}
}

// RegisterLoader routes every extension the loader claims to it.
// A later registration for the same extension replaces the earlier one.
func (s *Server) RegisterLoader(l Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ext := range l.Extensions() {
		s.loaders[strings.ToLower(ext)] = l
	}
}

// Load requests the asset at path and returns its handle without waiting.
// Requesting the same path again returns the same handle.
func (s *Server) Load(path string) Handle {
	s.mu.Lock()
	if id, ok := s.byPath[path]; ok {
		h := s.entries[id].handle
		s.mu.Unlock()
		return h
	}

	s.nextID++
	h := Handle{id: s.nextID, path: path}
	s.byPath[path] = h.id
	s.entries[h.id] = &entry{handle: h, state: StatePending}
	loader := s.loaderFor(path)
	s.mu.Unlock()

	go s.read(h, loader)
	return h
}

// loaderFor picks the loader with the longest matching extension. Caller holds mu.
func (s *Server) loaderFor(path string) Loader {
	lower := strings.ToLower(path)
	var (
		best    Loader
		bestLen int
	)
	for ext, l := range s.loaders {
		if strings.HasSuffix(lower, ext) && len(ext) > bestLen {
			best, bestLen = l, len(ext)
		}
	}
	return best
}

func (s *Server) read(h Handle, loader Loader) {
	res := result{id: h.id}
	data, err := fs.ReadFile(s.fsys, h.path)
	if err != nil {
		res.err = fmt.Errorf("failed to read asset %s: %w", h.path, err)
	} else {
		res.data = data
		if loader != nil {
			res.value, res.err = loader.Decode(h.path, data)
		}
	}

	s.mu.Lock()
	s.completed = append(s.completed, res)
	s.mu.Unlock()
}

// Tick publishes every read that finished since the previous tick and
// returns how many requests resolved.
func (s *Server) Tick() int {
	s.mu.Lock()
	done := s.completed
	s.completed = nil
	for _, res := range done {
		e, ok := s.entries[res.id]
		if !ok {
			continue
		}
		e.data, e.value, e.err = res.data, res.value, res.err
		if res.err != nil {
			e.state = StateFailed
		} else {
			e.state = StateLoaded
		}
	}
	s.mu.Unlock()

	for _, res := range done {
		if res.err != nil {
			s.logger.Warn("asset failed to load", "asset_id", res.id, "error", res.err)
		}
	}
	return len(done)
}

// State returns the published state of the request.
func (s *Server) State(h Handle) LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h.id]
	if !ok {
		return StateNotRequested
	}
	return e.state
}

// Err returns the failure for a failed request, or nil.
func (s *Server) Err(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[h.id]; ok && e.state == StateFailed {
		return e.err
	}
	return nil
}

// Bytes returns the raw contents of a loaded asset.
func (s *Server) Bytes(h Handle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h.id]
	if !ok || e.state != StateLoaded {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, h)
	}
	return e.data, nil
}

// Pending returns the number of requests that have not resolved yet.
func (s *Server) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.state == StatePending {
			n++
		}
	}
	return n
}

// Paths returns every requested path in sorted order.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Get returns the decoded value of a loaded asset if it has type T.
func Get[T any](s *Server, h Handle) (T, bool) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h.id]
	if !ok || e.state != StateLoaded {
		return zero, false
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
