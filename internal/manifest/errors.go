package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the load pipeline.
var (
	ErrSourceFormat      = errors.New("invalid item source file")
	ErrDuplicateItemName = errors.New("duplicate item name")
	ErrInvalidItem       = errors.New("invalid item")
)

// SourceError reports a source file that could not be decoded.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying parse error.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceFormat, e.Err}
}

// DuplicateNameError reports a name defined more than once in the merged collection.
type DuplicateNameError struct {
	Name  string
	ID    ItemID
	Count int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s: %q defined %d times", ErrDuplicateItemName, e.Name, e.Count)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateItemName }

// InvalidItemError reports a raw item that failed field validation.
type InvalidItemError struct {
	Index  int
	Name   string
	Field  string
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("%s: item %d (%q): %s %s", ErrInvalidItem, e.Index, e.Name, e.Field, e.Reason)
}

func (e *InvalidItemError) Unwrap() error { return ErrInvalidItem }

// LoadError is the failure of a whole load cycle. Errs holds every problem found.
type LoadError struct {
	Errs []error
}

func (e *LoadError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("item manifest load failed (%d errors): %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *LoadError) Unwrap() []error { return e.Errs }
