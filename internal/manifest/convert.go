package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/samdwyer/emberfall/internal/asset"
)

// SpriteLoader requests sprite assets. *asset.Server satisfies it.
type SpriteLoader interface {
	Load(path string) asset.Handle
}

// DuplicatePolicy decides what Convert does when two records share a name.
type DuplicatePolicy int

const (
	// DuplicateFail rejects the whole collection.
	DuplicateFail DuplicatePolicy = iota
	// DuplicateFirstWins keeps the earliest record in merge order.
	DuplicateFirstWins
	// DuplicateLastWins keeps the latest record in merge order.
	DuplicateLastWins
)

// String returns the configuration spelling of the policy.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateFail:
		return "fail"
	case DuplicateFirstWins:
		return "first-wins"
	case DuplicateLastWins:
		return "last-wins"
	default:
		return "unknown"
	}
}

// ParseDuplicatePolicy parses "fail", "first-wins" or "last-wins".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail", "":
		return DuplicateFail, nil
	case "first-wins", "first":
		return DuplicateFirstWins, nil
	case "last-wins", "last":
		return DuplicateLastWins, nil
	default:
		return DuplicateFail, fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// ConvertOptions controls validation and collision handling.
type ConvertOptions struct {
	Duplicates DuplicatePolicy
	// AllowZeroStack accepts max_stack 0 instead of rejecting it.
	AllowZeroStack bool
	Logger         *slog.Logger
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report the authored field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Convert validates merged records and builds the runtime item table, requesting each
// surviving item's sprite from sprites. Every problem found is returned, joined; when any
// is found no manifest is returned.
func Convert(merged RawItemManifest, sprites SpriteLoader, opts ConvertOptions) (*ItemManifest, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var errs []error
	for i := range merged.Items {
		errs = append(errs, validateRaw(i, &merged.Items[i], opts.AllowZeroStack)...)
	}

	winners, dupErrs := pickWinners(merged.Items, opts.Duplicates, log)
	errs = append(errs, dupErrs...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	items := make(map[ItemID]Item, len(winners))
	for i := range merged.Items {
		raw := &merged.Items[i]
		id := IDFor(raw.Name)
		if winners[id] != i {
			continue
		}
		var sprite asset.Handle
		if raw.Sprite != "" {
			sprite = sprites.Load(raw.Sprite)
		}
		items[id] = Item{
			ID:          id,
			Name:        raw.Name,
			Description: raw.Description,
			Value:       raw.Value,
			Weight:      raw.Weight,
			MaxStack:    raw.MaxStack,
			Sprite:      sprite,
		}
	}

	return newItemManifest(items), nil
}

func validateRaw(index int, raw *RawItem, allowZeroStack bool) []error {
	var err error
	if allowZeroStack {
		err = validate.StructExcept(raw, "MaxStack")
	} else {
		err = validate.Struct(raw)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{fmt.Errorf("%w: item %d: %v", ErrInvalidItem, index, err)}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &InvalidItemError{
			Index:  index,
			Name:   raw.Name,
			Field:  fe.Field(),
			Reason: reasonFor(fe),
		})
	}
	return out
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return "is invalid"
	}
}

// pickWinners maps each identifier to the index of the record that survives the policy.
func pickWinners(items []RawItem, policy DuplicatePolicy, log *slog.Logger) (map[ItemID]int, []error) {
	winners := make(map[ItemID]int, len(items))
	counts := make(map[ItemID]int, len(items))
	var order []ItemID
	var errs []error

	for i := range items {
		id := IDFor(items[i].Name)
		first, seen := winners[id]
		if seen && items[first].Name != items[i].Name {
			errs = append(errs, fmt.Errorf("%w: %q and %q share identifier %s",
				ErrDuplicateItemName, items[first].Name, items[i].Name, id))
			continue
		}
		counts[id]++
		if !seen {
			order = append(order, id)
			winners[id] = i
			continue
		}
		if policy == DuplicateLastWins {
			winners[id] = i
		}
	}

	for _, id := range order {
		n := counts[id]
		if n < 2 {
			continue
		}
		name := items[winners[id]].Name
		if policy == DuplicateFail {
			errs = append(errs, &DuplicateNameError{Name: name, ID: id, Count: n})
			continue
		}
		log.Warn("duplicate item name resolved by policy",
			"item", name, "definitions", n, "policy", policy.String(), "kept_index", winners[id])
	}
	return winners, errs
}
