package gamedata

// Abilities are data-driven combat actions. Each one has exactly one effect, applied to
// one combatant picked by a targeting rule:
//
//	damage - reduces an enemy's health, saturating at zero
//	heal   - restores an ally's health, capped at its starting health
//	drain  - removes mana from an enemy
//
// Targeting rules (see combat.TargetRule):
//
//	first         - earliest in roster order, even if defeated
//	first_alive   - earliest with health left
//	lowest_health - living combatant with the least health
//
// JSON schema:
//
//	{
//	  "id": "frost_bolt",
//	  "name": "Frost Bolt",
//	  "description": "A shard of ice at the first standing enemy",
//	  "effectType": "damage",
//	  "targetType": "first_alive",
//	  "basePower": 18
//	}

// EffectType represents what an ability does.
type EffectType string

const (
	EffectDamage EffectType = "damage"
	EffectHeal   EffectType = "heal"
	EffectDrain  EffectType = "drain"
)

// TargetType represents which combatant an ability picks.
type TargetType string

const (
	TargetFirst        TargetType = "first"
	TargetFirstAlive   TargetType = "first_alive"
	TargetLowestHealth TargetType = "lowest_health"
)

// AbilityDef defines an ability loaded from JSON.
type AbilityDef struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	EffectType  EffectType `json:"effectType"`
	TargetType  TargetType `json:"targetType"`
	BasePower   uint32     `json:"basePower"`
}

// IsOffensive returns true if the ability targets enemies.
func (a *AbilityDef) IsOffensive() bool {
	return a.EffectType == EffectDamage || a.EffectType == EffectDrain
}

// AbilitiesFile represents the structure of abilities.json.
type AbilitiesFile struct {
	Abilities []AbilityDef `json:"abilities"`
}

// LoadAbilities loads ability definitions from the embedded abilities.json file.
func LoadAbilities() ([]AbilityDef, error) {
	file, err := Load[AbilitiesFile]("abilities.json")
	if err != nil {
		return nil, err
	}
	return file.Abilities, nil
}
