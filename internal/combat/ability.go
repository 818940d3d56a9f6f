package combat

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samdwyer/emberfall/internal/gamedata"
)

// ErrUnknownAbility is returned when an ability name is not registered.
var ErrUnknownAbility = errors.New("unknown ability")

// Ability is a named, stateless combat action. Execute may only change the combatants
// reachable through the context and must not keep references to them.
type Ability interface {
	Name() string
	Execute(c *Context) (Effect, error)
}

// FireballDamage is the damage Fireball deals.
const FireballDamage = 30

// Fireball hits the first enemy in roster order.
type Fireball struct{}

// Name implements Ability.
func (Fireball) Name() string { return "fireball" }

// Execute implements Ability.
func (f Fireball) Execute(c *Context) (Effect, error) {
	eff, err := c.DamageEnemy(TargetFirst, FireballDamage)
	eff.Ability = f.Name()
	return eff, err
}

// DefAbility is an ability described by data.
type DefAbility struct {
	id     string
	effect gamedata.EffectType
	rule   TargetRule
	power  uint32
}

// NewDefAbility validates def and builds an executable ability from it.
func NewDefAbility(def gamedata.AbilityDef) (*DefAbility, error) {
	if def.ID == "" {
		return nil, errors.New("ability definition has no id")
	}
	switch def.EffectType {
	case gamedata.EffectDamage, gamedata.EffectHeal, gamedata.EffectDrain:
	default:
		return nil, fmt.Errorf("ability %q: unknown effect type %q", def.ID, def.EffectType)
	}
	rule, err := ParseTargetRule(string(def.TargetType))
	if err != nil {
		return nil, fmt.Errorf("ability %q: %w", def.ID, err)
	}
	return &DefAbility{id: def.ID, effect: def.EffectType, rule: rule, power: def.BasePower}, nil
}

// Name implements Ability.
func (a *DefAbility) Name() string { return a.id }

// Execute implements Ability.
func (a *DefAbility) Execute(c *Context) (Effect, error) {
	var (
		eff Effect
		err error
	)
	switch a.effect {
	case gamedata.EffectDamage:
		eff, err = c.DamageEnemy(a.rule, a.power)
	case gamedata.EffectHeal:
		eff, err = c.HealAlly(a.rule, a.power)
	case gamedata.EffectDrain:
		eff, err = c.DrainEnemyMana(a.rule, a.power)
	}
	eff.Ability = a.id
	return eff, err
}

// Registry maps ability names to abilities.
type Registry struct {
	abilities map[string]Ability
}

// NewRegistry creates a registry holding the built-in abilities.
func NewRegistry() *Registry {
	r := &Registry{abilities: make(map[string]Ability)}
	_ = r.Register(Fireball{})
	return r
}

// Register adds an ability. Names must be unique.
func (r *Registry) Register(a Ability) error {
	if _, exists := r.abilities[a.Name()]; exists {
		return fmt.Errorf("ability %q already registered", a.Name())
	}
	r.abilities[a.Name()] = a
	return nil
}

// RegisterDefs adds every data-defined ability, stopping at the first invalid one.
func (r *Registry) RegisterDefs(defs []gamedata.AbilityDef) error {
	for _, def := range defs {
		a, err := NewDefAbility(def)
		if err != nil {
			return err
		}
		if err := r.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the ability registered under name.
func (r *Registry) Get(name string) (Ability, bool) {
	a, ok := r.abilities[name]
	return a, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.abilities))
	for name := range r.abilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered abilities.
func (r *Registry) Count() int {
	return len(r.abilities)
}
