package gamedata

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownCombatant is returned when a combatant ID has no definition.
var ErrUnknownCombatant = errors.New("unknown combatant")

// index is the ID-keyed lookup shared by the definition registries. Later definitions
// with a repeated ID replace earlier ones in lookups; All keeps file order.
type index[T any] struct {
	byID map[string]*T
	all  []T
}

func newIndex[T any](defs []T, id func(*T) string) index[T] {
	idx := index[T]{byID: make(map[string]*T, len(defs)), all: defs}
	for i := range defs {
		idx.byID[id(&defs[i])] = &defs[i]
	}
	return idx
}

// GetByID returns the definition with the given ID, or nil if not found.
func (x index[T]) GetByID(id string) *T { return x.byID[id] }

// All returns a copy of every definition in file order.
func (x index[T]) All() []T { return slices.Clone(x.all) }

// Count returns the number of definitions.
func (x index[T]) Count() int { return len(x.all) }

func loadNonEmpty[T any](load func() ([]T, error), file string) ([]T, error) {
	defs, err := load()
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no definitions loaded from %s", file)
	}
	return defs, nil
}

// CombatantRegistry holds combatant definitions keyed by ID.
type CombatantRegistry struct {
	index[CombatantDef]
}

// NewCombatantRegistry creates a registry from loaded combatant definitions.
func NewCombatantRegistry(combatants []CombatantDef) *CombatantRegistry {
	return &CombatantRegistry{newIndex(combatants, func(c *CombatantDef) string { return c.ID })}
}

// LoadCombatantRegistry builds a registry from the embedded combatants.json.
func LoadCombatantRegistry() (*CombatantRegistry, error) {
	defs, err := loadNonEmpty(LoadCombatants, "combatants.json")
	if err != nil {
		return nil, err
	}
	return NewCombatantRegistry(defs), nil
}

// MustLoadCombatantRegistry loads a registry, panicking on error.
func MustLoadCombatantRegistry() *CombatantRegistry {
	registry, err := LoadCombatantRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// Lookup returns the definitions for ids in order, failing on the first unknown ID.
func (r *CombatantRegistry) Lookup(ids []string) ([]*CombatantDef, error) {
	defs := make([]*CombatantDef, 0, len(ids))
	for _, id := range ids {
		def := r.GetByID(id)
		if def == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCombatant, id)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// AbilityRegistry holds ability definitions keyed by ID.
type AbilityRegistry struct {
	index[AbilityDef]
}

// NewAbilityRegistry creates a registry from loaded ability definitions.
func NewAbilityRegistry(abilities []AbilityDef) *AbilityRegistry {
	return &AbilityRegistry{newIndex(abilities, func(a *AbilityDef) string { return a.ID })}
}

// LoadAbilityRegistry builds a registry from the embedded abilities.json.
func LoadAbilityRegistry() (*AbilityRegistry, error) {
	defs, err := loadNonEmpty(LoadAbilities, "abilities.json")
	if err != nil {
		return nil, err
	}
	return NewAbilityRegistry(defs), nil
}

// MustLoadAbilityRegistry loads a registry, panicking on error.
func MustLoadAbilityRegistry() *AbilityRegistry {
	registry, err := LoadAbilityRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}
