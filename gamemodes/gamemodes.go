// Package gamemodes holds the shipped rulesets. Modes are selected by name at
// game creation through the Available map, which main injects into the game
// registry.
package gamemodes

import "tagserver/game"

// Available maps gamemode names to their factories.
var Available = map[string]game.GamemodeFactory{
	"deathmatch": NewDeathmatch,
	"zombie":     NewZombie,
	"debug":      NewDebug,
}
