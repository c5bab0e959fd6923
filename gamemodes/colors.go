package gamemodes

import "tagserver/game"

// hueColor converts a hue in [0,1) to a fully saturated RGB color.
func hueColor(hue float64) game.Color {
	hue = hue - float64(int(hue))
	if hue < 0 {
		hue++
	}

	h := hue * 6
	sector := int(h)
	f := h - float64(sector)

	q := uint8(255 * (1 - f))
	t := uint8(255 * f)

	switch sector % 6 {
	case 0:
		return game.Color{R: 255, G: t, B: 0}
	case 1:
		return game.Color{R: q, G: 255, B: 0}
	case 2:
		return game.Color{R: 0, G: 255, B: t}
	case 3:
		return game.Color{R: 0, G: q, B: 255}
	case 4:
		return game.Color{R: t, G: 0, B: 255}
	default:
		return game.Color{R: 255, G: 0, B: q}
	}
}

// playerHue spreads player colors over the hue circle. The +1 keeps the first
// and last player from ending up with the same color.
func playerHue(index, count int, offset float64) float64 {
	return float64(index)/float64(count+1) + offset
}
