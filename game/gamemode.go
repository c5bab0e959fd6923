package game

// Gamemode encapsulates all rule-specific behavior of a game. One instance
// exists per game, created by the factory registered under the mode's name.
// Hooks always run under the owning game's lock.
type Gamemode interface {
	PlayerJoined(p *Player)
	PlayerLeaving(p *Player)
	PlayerGameStart(p *Player)
	PlayerGotHit(p, opponent *Player, sid int)
	PlayerHasHit(p, opponent *Player, sid int)
	PlayerSendShot(p *Player, sid int)
	PlayerJoiningTeam(p *Player, t *Team)
	PlayerLeavingTeam(p *Player, t *Team)

	// ShotResolved records the (sid, origin) pair of a hit pulse and reports
	// whether it was already resolved. The game consults this once per pulse
	// before any hit hooks run, so duplicate network deliveries never apply
	// damage or points twice.
	ShotResolved(opponent *Player, sid int) bool

	// HitpointInit returns the init color for a hitpoint device mode, false
	// when the mode is not used by this gamemode.
	HitpointInit(mode int) (Color, bool)
	// HitpointGotHit handles a hitpoint hit and returns the device cooldown
	// in milliseconds, false when the hit is not accepted.
	HitpointGotHit(mode int, p *Player, sid int) (int, bool)

	// Valid reports whether the player count is within the mode's bounds.
	Valid() bool
	// TeamsManaged reports whether the mode owns team membership itself.
	TeamsManaged() bool
}

// GamemodeFactory creates a gamemode bound to its game.
type GamemodeFactory func(g *Game) Gamemode

// shotKey identifies one physical pulse: the device-local shot sequence
// number together with the firing player.
type shotKey struct {
	sid int
	pid int
}

// Base carries the shared gamemode state and no-op hook implementations, so
// concrete modes override only what they need.
type Base struct {
	Game *Game

	PlayerMin int
	PlayerMax int
	Managed   bool

	alreadyHit map[shotKey]struct{}
}

func NewBase(g *Game) Base {
	return Base{
		Game:       g,
		PlayerMin:  0,
		PlayerMax:  255,
		alreadyHit: make(map[shotKey]struct{}),
	}
}

// ShotResolved is the check-and-mark for the dedup set keyed on the firing
// player and the shot sequence number.
func (b *Base) ShotResolved(opponent *Player, sid int) bool {
	key := shotKey{sid: sid, pid: opponent.PID}
	if _, ok := b.alreadyHit[key]; ok {
		return true
	}
	b.alreadyHit[key] = struct{}{}
	return false
}

func (b *Base) PlayerJoined(p *Player)                      {}
func (b *Base) PlayerLeaving(p *Player)                     {}
func (b *Base) PlayerGameStart(p *Player)                   {}
func (b *Base) PlayerGotHit(p, opponent *Player, sid int)   {}
func (b *Base) PlayerHasHit(p, opponent *Player, sid int)   {}
func (b *Base) PlayerSendShot(p *Player, sid int)           {}
func (b *Base) PlayerJoiningTeam(p *Player, t *Team)        {}
func (b *Base) PlayerLeavingTeam(p *Player, t *Team)        {}
func (b *Base) HitpointInit(mode int) (Color, bool)         { return Color{}, false }
func (b *Base) HitpointGotHit(int, *Player, int) (int, bool) { return 0, false }

// The helpers below read from or mutate the game directly and are only valid
// inside gamemode hooks, where the game lock is already held.

// Players returns the game's players in pid order.
func (b *Base) Players() []*Player {
	return b.Game.playersByPID()
}

func (b *Base) PlayerCount() int {
	return len(b.Game.players)
}

// PlayerIndex is the player's dense position in pid order.
func (b *Base) PlayerIndex(p *Player) int {
	return b.Game.playerIndex(p)
}

func (b *Base) StartTime() int64 {
	return b.Game.startTime
}

// MoveToTeam moves a player between teams, firing the team hooks.
func (b *Base) MoveToTeam(p *Player, t *Team) {
	b.Game.moveToTeam(p, t)
}

func (b *Base) Valid() bool {
	count := len(b.Game.players)
	return count >= b.PlayerMin && count <= b.PlayerMax
}

func (b *Base) TeamsManaged() bool {
	return b.Managed
}
