package gamedata

// CombatantDef is the starting state of an ally or enemy, loaded from JSON.
type CombatantDef struct {
	ID           string   `json:"id"`     // Unique identifier (e.g., "goblin")
	Name         string   `json:"name"`   // Display name (e.g., "Goblin")
	Health       uint32   `json:"health"` // Starting and maximum health
	Mana         uint32   `json:"mana"`   // Starting and maximum mana
	Strength     uint32   `json:"strength"`
	Vitality     uint32   `json:"vitality"`
	Dexterity    uint32   `json:"dexterity"`
	Intelligence uint32   `json:"intelligence"`
	Abilities    []string `json:"abilities"` // Ability IDs this combatant can use
}

// CombatantsFile represents the structure of combatants.json.
type CombatantsFile struct {
	Combatants []CombatantDef `json:"combatants"`
}

// LoadCombatants loads combatant definitions from the embedded combatants.json file.
func LoadCombatants() ([]CombatantDef, error) {
	file, err := Load[CombatantsFile]("combatants.json")
	if err != nil {
		return nil, err
	}
	return file.Combatants, nil
}
