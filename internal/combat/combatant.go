// Package combat resolves abilities against rosters of combatants.
//
// Combat is synchronous and single-threaded: a Context and the combatants in it belong to
// whoever is executing an ability, and nothing here locks.
package combat

// Stats is a combatant's fixed stat block.
type Stats struct {
	Strength     uint32
	Vitality     uint32
	Dexterity    uint32
	Intelligence uint32
}

// Combatant is the mutable state of one participant in a battle.
type Combatant struct {
	name      string
	health    uint32
	maxHealth uint32
	mana      uint32
	maxMana   uint32
	stats     Stats
}

// NewCombatant creates a combatant at full health and mana.
func NewCombatant(name string, health, mana uint32, stats Stats) *Combatant {
	return &Combatant{
		name:      name,
		health:    health,
		maxHealth: health,
		mana:      mana,
		maxMana:   mana,
		stats:     stats,
	}
}

// Name returns the combatant's display name.
func (c *Combatant) Name() string { return c.name }

// Health returns current health.
func (c *Combatant) Health() uint32 { return c.health }

// MaxHealth returns the health the combatant started with.
func (c *Combatant) MaxHealth() uint32 { return c.maxHealth }

// Mana returns the current resource pool.
func (c *Combatant) Mana() uint32 { return c.mana }

// MaxMana returns the mana the combatant started with.
func (c *Combatant) MaxMana() uint32 { return c.maxMana }

// Stats returns the stat block.
func (c *Combatant) Stats() Stats { return c.stats }

// IsDefeated reports whether health has reached zero.
func (c *Combatant) IsDefeated() bool { return c.health == 0 }

// TakeDamage reduces health, saturating at zero, and returns the damage actually dealt.
func (c *Combatant) TakeDamage(amount uint32) uint32 {
	actual := min(amount, c.health)
	c.health -= actual
	return actual
}

// Heal restores health up to the maximum and returns the amount actually healed.
func (c *Combatant) Heal(amount uint32) uint32 {
	actual := min(amount, c.maxHealth-c.health)
	c.health += actual
	return actual
}

// DrainMana removes up to amount mana and returns how much was removed.
func (c *Combatant) DrainMana(amount uint32) uint32 {
	actual := min(amount, c.mana)
	c.mana -= actual
	return actual
}
