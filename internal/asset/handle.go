// Package asset provides the file-backed asset substrate the content pipeline loads through.
//
// Requests never block: Load hands back a Handle immediately and the read happens on a
// background goroutine. Results only become visible to callers after the host calls Tick,
// so every consumer sees a resolution on a frame boundary.
package asset

import "fmt"

// Handle is a non-owning ticket for a requested asset. The Server owns the data.
// The zero Handle refers to nothing.
type Handle struct {
	id   uint64
	path string
}

// ID returns the server-assigned identifier for the request.
func (h Handle) ID() uint64 { return h.id }

// Path returns the path the asset was requested with.
func (h Handle) Path() string { return h.path }

// IsZero reports whether the handle was never issued by a Server.
func (h Handle) IsZero() bool { return h.id == 0 }

// String returns a debug representation of the handle.
func (h Handle) String() string {
	if h.IsZero() {
		return "asset(none)"
	}
	return fmt.Sprintf("asset(%d:%s)", h.id, h.path)
}

// LoadState describes where an asset request is in its lifecycle.
type LoadState int

const (
	// StateNotRequested means the handle is unknown to the server.
	StateNotRequested LoadState = iota
	// StatePending means the read has not been published by Tick yet.
	StatePending
	// StateLoaded means the bytes (and decoded value, if any) are available.
	StateLoaded
	// StateFailed means the file could not be read or decoded.
	StateFailed
)

// String returns a human-readable state name.
func (s LoadState) String() string {
	switch s {
	case StateNotRequested:
		return "not_requested"
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolved reports whether the request reached a terminal state.
func (s LoadState) Resolved() bool {
	return s == StateLoaded || s == StateFailed
}
