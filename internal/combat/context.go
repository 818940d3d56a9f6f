package combat

import (
	"errors"
	"fmt"
)

// ErrNoValidTarget is returned when a targeting rule finds nobody, for example once every
// enemy is defeated. It is a normal end-of-combat condition.
var ErrNoValidTarget = errors.New("no valid target")

// Side selects one of the two rosters in a Context.
type Side int

const (
	SideEnemies Side = iota
	SideAllies
)

// String returns a human-readable side name.
func (s Side) String() string {
	switch s {
	case SideEnemies:
		return "enemies"
	case SideAllies:
		return "allies"
	default:
		return "unknown"
	}
}

// TargetRule picks one combatant from a roster.
type TargetRule int

const (
	// TargetFirst picks the earliest combatant in roster order, defeated or not.
	TargetFirst TargetRule = iota
	// TargetFirstAlive picks the earliest combatant with health left.
	TargetFirstAlive
	// TargetLowestHealth picks the living combatant with the least health; ties go to roster order.
	TargetLowestHealth
)

// String returns the data spelling of the rule.
func (r TargetRule) String() string {
	switch r {
	case TargetFirst:
		return "first"
	case TargetFirstAlive:
		return "first_alive"
	case TargetLowestHealth:
		return "lowest_health"
	default:
		return "unknown"
	}
}

// ParseTargetRule parses the data spelling of a rule.
func ParseTargetRule(s string) (TargetRule, error) {
	switch s {
	case "first":
		return TargetFirst, nil
	case "first_alive":
		return TargetFirstAlive, nil
	case "lowest_health":
		return TargetLowestHealth, nil
	default:
		return TargetFirst, fmt.Errorf("unknown target rule %q", s)
	}
}

// Effect describes what an ability did.
type Effect struct {
	Ability     string
	Side        Side
	Target      string
	Damage      uint32
	Healing     uint32
	ManaDrained uint32
	Defeated    bool // the target reached zero health because of this effect
}

// Context is the view over both rosters that abilities act on. Abilities reach combatants
// only through FindTarget and the effect helpers.
type Context struct {
	allies  []*Combatant
	enemies []*Combatant
}

// NewContext groups the rosters for ability execution. The slices are copied; the
// combatants are shared with the caller.
func NewContext(allies, enemies []*Combatant) *Context {
	return &Context{
		allies:  append([]*Combatant(nil), allies...),
		enemies: append([]*Combatant(nil), enemies...),
	}
}

func (c *Context) roster(side Side) []*Combatant {
	if side == SideAllies {
		return c.allies
	}
	return c.enemies
}

// FindTarget resolves rule against one roster.
func (c *Context) FindTarget(side Side, rule TargetRule) (*Combatant, error) {
	roster := c.roster(side)
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: %s roster is empty", ErrNoValidTarget, side)
	}

	var target *Combatant
	switch rule {
	case TargetFirst:
		target = roster[0]
	case TargetFirstAlive:
		for _, cb := range roster {
			if !cb.IsDefeated() {
				target = cb
				break
			}
		}
	case TargetLowestHealth:
		for _, cb := range roster {
			if cb.IsDefeated() {
				continue
			}
			if target == nil || cb.Health() < target.Health() {
				target = cb
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown rule %d", ErrNoValidTarget, rule)
	}

	if target == nil {
		return nil, fmt.Errorf("%w: no %s matches %s", ErrNoValidTarget, side, rule)
	}
	return target, nil
}

// DamageEnemy deals amount damage to the enemy chosen by rule.
func (c *Context) DamageEnemy(rule TargetRule, amount uint32) (Effect, error) {
	target, err := c.FindTarget(SideEnemies, rule)
	if err != nil {
		return Effect{}, err
	}
	wasDefeated := target.IsDefeated()
	dealt := target.TakeDamage(amount)
	return Effect{
		Side:     SideEnemies,
		Target:   target.Name(),
		Damage:   dealt,
		Defeated: !wasDefeated && target.IsDefeated(),
	}, nil
}

// HealAlly heals the ally chosen by rule.
func (c *Context) HealAlly(rule TargetRule, amount uint32) (Effect, error) {
	target, err := c.FindTarget(SideAllies, rule)
	if err != nil {
		return Effect{}, err
	}
	return Effect{
		Side:    SideAllies,
		Target:  target.Name(),
		Healing: target.Heal(amount),
	}, nil
}

// DrainEnemyMana removes mana from the enemy chosen by rule.
func (c *Context) DrainEnemyMana(rule TargetRule, amount uint32) (Effect, error) {
	target, err := c.FindTarget(SideEnemies, rule)
	if err != nil {
		return Effect{}, err
	}
	return Effect{
		Side:        SideEnemies,
		Target:      target.Name(),
		ManaDrained: target.DrainMana(amount),
	}, nil
}

// Roster returns a copy of one roster in order, for display.
func (c *Context) Roster(side Side) []*Combatant {
	return append([]*Combatant(nil), c.roster(side)...)
}

// Living counts the combatants on a side with health left.
func (c *Context) Living(side Side) int {
	n := 0
	for _, cb := range c.roster(side) {
		if !cb.IsDefeated() {
			n++
		}
	}
	return n
}
