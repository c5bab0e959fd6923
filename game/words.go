package game

import (
	"math/rand"
	"strings"
)

// Game ids are two random dictionary words in PascalCase ("RiverStone"),
// short enough to type into a phaser screen and easy to read out loud.
var wordlist = []string{
	"time", "year", "world", "life", "hand", "part", "child", "place",
	"week", "point", "house", "night", "water", "room", "story", "fact",
	"month", "book", "word", "side", "kind", "head", "house", "power",
	"hour", "game", "line", "city", "name", "team", "area", "home",
	"light", "party", "music", "road", "river", "town", "color", "door",
	"field", "stone", "star", "voice", "north", "south", "east", "west",
	"paper", "group", "level", "heart", "table", "page", "card", "earth",
	"space", "plant", "tree", "park", "rock", "bird", "fire", "rain",
	"wind", "snow", "cloud", "moon", "lake", "hill", "wood", "iron",
	"gold", "glass", "sound", "dream", "smile", "dance", "horse", "tiger",
	"eagle", "wolf", "bear", "fox", "hawk", "lion", "deer", "swan",
	"storm", "flash", "spark", "shade", "frost", "ember", "blaze", "drift",
}

func randomGameID(r *rand.Rand) string {
	first := wordlist[r.Intn(len(wordlist))]
	second := wordlist[r.Intn(len(wordlist))]
	return titleWord(first) + titleWord(second)
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
