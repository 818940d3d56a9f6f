// Package gamedata holds the combatant and ability definitions used to set up battles.
package gamedata

import "embed"

//go:embed abilities.json combatants.json
var dataFS embed.FS
