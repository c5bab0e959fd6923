package game

import "tagserver/protocol"

// Color is an RGB triple as shown on the phaser/vest LEDs.
type Color struct {
	R, G, B uint8
}

// Player is the combat and presentation state of one participant. A player is
// owned by exactly one game for its whole lifetime; the session merely
// references it. Field mutation happens inside gamemode hooks, which always
// run under the game lock.
type Player struct {
	Game   *Game
	Team   *Team
	Client Client

	PID  int
	Name string

	Health          int
	Points          int
	Color           Color
	ColorBeforeGame bool

	AmmoLimit bool
	Ammo      int

	PhaserEnable       bool
	PhaserDisableUntil int64

	// Shortest allowed interval between two shots, in milliseconds.
	MaxShotInterval int

	Inviolable          bool
	InviolableUntil     int64
	InviolableLightsOff bool
}

// AddAmmo queues the add-ammo action on the player's phaser.
func (p *Player) AddAmmo(amount int) {
	p.Client.TriggerAction(protocol.ActionAddAmmo, map[string]interface{}{"amount": amount})
}

// PGTData returns the p_-prefixed derived fields. Caller must hold the game
// lock.
func (p *Player) PGTData() map[string]interface{} {
	return map[string]interface{}{
		"p_pid":                   p.PID,
		"p_name":                  p.Name,
		"p_health":                p.Health,
		"p_points":                p.Points,
		"p_color_r":               p.Color.R,
		"p_color_g":               p.Color.G,
		"p_color_b":               p.Color.B,
		"p_color_before_game":     p.ColorBeforeGame,
		"p_ammo_limit":            p.AmmoLimit,
		"p_ammo":                  p.Ammo,
		"p_phaser_enable":         p.PhaserEnable,
		"p_phaser_disable_until":  p.PhaserDisableUntil,
		"p_max_shot_interval":     p.MaxShotInterval,
		"p_rank":                  p.Game.rankOfPlayer(p),
		"p_inviolable":            p.Inviolable,
		"p_inviolable_until":      p.InviolableUntil,
		"p_inviolable_lights_off": p.InviolableLightsOff,
	}
}
