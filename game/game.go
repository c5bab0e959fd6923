package game

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"tagserver/protocol"
)

// Identity is the authenticated user behind a client session. Resolved by the
// external user directory, referenced here only by id and display name.
type Identity interface {
	UserID() uint
	DisplayName() string
}

// Client is the session side of a connected device. Implemented by the
// communication layer; the game layer only queues actions and requests
// updates through it.
type Client interface {
	Identity() Identity
	Player() *Player
	SessionGame() *Game
	SetPlayer(p *Player)
	SetGame(g *Game)
	TriggerAction(code int, params map[string]interface{})
	SetField(data map[string]interface{})
	Update(full bool)
	Reset()
}

// PGTSnapshot is the full player/game/team state pushed to spectators.
type PGTSnapshot struct {
	Game    map[string]interface{}   `json:"game"`
	Players []map[string]interface{} `json:"players"`
	Teams   []map[string]interface{} `json:"teams"`
}

// Spectator is a read-only observer of one game. The game builds all payloads
// under its own lock and hands them over, so implementations just serialize
// and send.
type Spectator interface {
	Update(snapshot PGTSnapshot)
	PlayerGotHit(player, opponent map[string]interface{}, sid int)
	PlayerFiredShot(player map[string]interface{}, sid int)
	Close()
}

// Game holds all live state of one arena session. Every exported method takes
// the game lock; the unexported helpers and the PGTData accessors assume the
// caller holds it. Code outside this package must go through the exported
// methods only.
type Game struct {
	mu sync.Mutex

	GID       string
	Mode      string
	CreatedBy Identity
	CreatedAt int64

	// Unix timestamp of the scheduled start, 0 while unscheduled.
	startTime int64

	players    map[int]*Player
	teams      map[int]*Team
	spectators map[Spectator]struct{}

	gamemode Gamemode
	logger   *zap.Logger
}

// NewGame creates a game with a fresh gamemode instance. The factory runs
// after the collections are initialized so modes that own teams (zombie) can
// register them right away.
func NewGame(factory GamemodeFactory, gid, mode string, createdBy Identity, logger *zap.Logger) *Game {
	g := &Game{
		GID:        gid,
		Mode:       mode,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().Unix(),
		players:    make(map[int]*Player),
		teams:      make(map[int]*Team),
		spectators: make(map[Spectator]struct{}),
		logger:     logger,
	}
	g.gamemode = factory(g)
	return g
}

// NewPlayer constructs a player for this game bound to the given client
// session. The player is not part of the game until AddPlayer is called.
func (g *Game) NewPlayer(client Client) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &Player{
		Game:                g,
		Client:              client,
		PID:                 g.nextPID(),
		Name:                client.Identity().DisplayName(),
		MaxShotInterval:     1000,
		InviolableLightsOff: true,
	}
}

// NewTeam constructs a team with the next free tid. Not part of the game
// until AddTeam is called.
func (g *Game) NewTeam(name string) *Team {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &Team{game: g, TID: g.nextTID(), Name: name, players: make(map[int]*Player)}
}

// nextPID returns max existing pid + 1. Ids are never reused within a game,
// even after the player left.
func (g *Game) nextPID() int {
	next := 1
	for pid := range g.players {
		if pid >= next {
			next = pid + 1
		}
	}
	return next
}

func (g *Game) nextTID() int {
	next := 1
	for tid := range g.teams {
		if tid >= next {
			next = tid + 1
		}
	}
	return next
}

func (g *Game) AddPlayer(p *Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.players[p.PID] = p
	g.gamemode.PlayerJoined(p)
	g.updateSpectators()
}

func (g *Game) RemovePlayer(p *Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, p.PID)
	if p.Team != nil {
		p.Team.leave(p)
		p.Team = nil
	}
	g.gamemode.PlayerLeaving(p)
	g.updateSpectators()
}

func (g *Game) AddTeam(t *Team) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.teams[t.TID] = t
	g.updateSpectators()
}

// RemoveTeam detaches all members and drops the team.
func (g *Game) RemoveTeam(t *Team) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range t.members() {
		t.leave(p)
		p.Team = nil
	}
	delete(g.teams, t.TID)
	g.updateSpectators()
}

// MoveToTeam moves a player to the given team, leaving the previous team
// first. A player belongs to at most one team at a time.
func (g *Game) MoveToTeam(p *Player, t *Team) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moveToTeam(p, t)
}

func (g *Game) moveToTeam(p *Player, t *Team) {
	if p.Team != nil {
		g.gamemode.PlayerLeavingTeam(p, p.Team)
		p.Team.leave(p)
	}
	g.gamemode.PlayerJoiningTeam(p, t)
	t.join(p)
	p.Team = t
}

// LeaveTeam removes the player from its current team, if any.
func (g *Game) LeaveTeam(p *Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p.Team == nil {
		return
	}
	g.gamemode.PlayerLeavingTeam(p, p.Team)
	p.Team.leave(p)
	p.Team = nil
}

// ScheduleStart validates the game and sets the start timestamp to now+delay.
// The gamemode start hook runs for every player in pid order so color
// assignment is deterministic. Returns false without mutating anything when
// the player count is outside the gamemode bounds.
func (g *Game) ScheduleStart(delaySeconds int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.gamemode.Valid() {
		return false
	}

	g.startTime = time.Now().Unix() + int64(delaySeconds)

	for _, p := range g.playersByPID() {
		g.gamemode.PlayerGameStart(p)
		p.Client.Update(false)
	}
	g.updateSpectators()

	return true
}

// Close runs the leaving hook for every player, tells their sessions the game
// is over, detaches all spectators and empties the collections. The caller is
// responsible for dropping the game from the registry afterwards.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.playersByPID() {
		g.gamemode.PlayerLeaving(p)
		p.Client.TriggerAction(protocol.ActionGameClosed, nil)
		p.Client.Update(false)
		p.Client.Reset()
	}
	g.players = make(map[int]*Player)
	g.teams = make(map[int]*Team)

	for s := range g.spectators {
		s.Update(g.snapshot())
		s.Close()
	}
	g.spectators = make(map[Spectator]struct{})
}

// GotHit resolves a physical hit pulse reported by the victim's vest: the
// gamemode applies damage and points, both sessions are flushed and every
// spectator is notified. Duplicate (sid, origin) pairs are dropped before any
// hook runs, so damage and points apply exactly once per pulse.
func (g *Game) GotHit(victim *Player, opponentPID int, sid int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	opponent := g.players[opponentPID]
	if opponent == nil {
		return
	}

	if g.gamemode.ShotResolved(opponent, sid) {
		return
	}

	g.gamemode.PlayerGotHit(victim, opponent, sid)
	g.gamemode.PlayerHasHit(opponent, victim, sid)

	victim.Client.Update(false)
	opponent.Client.Update(false)

	g.updateSpectators()
	for s := range g.spectators {
		s.PlayerGotHit(victim.PGTData(), opponent.PGTData(), sid)
	}
}

// SendShot reports a fired shot to the gamemode and the spectators.
func (g *Game) SendShot(p *Player, sid int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gamemode.PlayerSendShot(p, sid)
	for s := range g.spectators {
		s.PlayerFiredShot(p.PGTData(), sid)
	}
}

// HitpointInit asks the gamemode for the init color of a hitpoint mode.
func (g *Game) HitpointInit(mode int) (Color, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gamemode.HitpointInit(mode)
}

// HitpointGotHit reports a hitpoint hit and returns the device cooldown in
// milliseconds when the gamemode accepted the hit.
func (g *Game) HitpointGotHit(mode int, p *Player, sid int) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gamemode.HitpointGotHit(mode, p, sid)
}

// AddSpectator attaches a spectator and immediately pushes a full snapshot.
func (g *Game) AddSpectator(s Spectator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spectators[s] = struct{}{}
	s.Update(g.snapshot())
}

func (g *Game) RemoveSpectator(s Spectator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.spectators, s)
}

// UpdateClient flushes a session's pending state while holding the game lock.
// This is the entry point for code outside this package that needs a client
// update for a session currently in a game.
func (g *Game) UpdateClient(c Client, full bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.Update(full)
}

func (g *Game) PlayerByPID(pid int) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players[pid]
}

func (g *Game) TeamByTID(tid int) *Team {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.teams[tid]
}

// TeamByName returns the team with the given display name, nil if absent.
func (g *Game) TeamByName(name string) *Team {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.teamsByTID() {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

func (g *Game) TeamCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.teams)
}

func (g *Game) StartTime() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.startTime
}

// Valid reports whether the gamemode allows the game to start right now.
func (g *Game) Valid() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gamemode.Valid()
}

// TeamsManaged reports whether the gamemode owns team membership, in which
// case external team edits are rejected.
func (g *Game) TeamsManaged() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gamemode.TeamsManaged()
}

// RankOfPlayer returns the 1-based rank of the player by descending points,
// -1 if the player is not part of this game. Ties keep join order.
func (g *Game) RankOfPlayer(p *Player) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rankOfPlayer(p)
}

// RankOfTeam is RankOfPlayer for teams, ranked by summed member points.
func (g *Game) RankOfTeam(t *Team) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rankOfTeam(t)
}

// PlayerIndex returns the player's position in pid order, a dense
// 0..count-1 number for things like color assignment. -1 if unknown.
func (g *Game) PlayerIndex(p *Player) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerIndex(p)
}

// PGTData returns the g_-prefixed summary fields. Caller must hold the game
// lock; outside this package use Snapshot or UpdateClient instead.
func (g *Game) PGTData() map[string]interface{} {
	return map[string]interface{}{
		"g_gid":          g.GID,
		"g_player_count": len(g.players),
		"g_team_count":   len(g.teams),
		"g_start_time":   g.startTime,
		"g_created_at":   g.CreatedAt,
		"g_created_by":   g.CreatedBy.DisplayName(),
	}
}

// PlayersInfo returns the per-player summaries served by the admin API.
func (g *Game) PlayersInfo() []map[string]interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	list := make([]map[string]interface{}, 0, len(g.players))
	for _, p := range g.playersByPID() {
		list = append(list, map[string]interface{}{
			"pid":    p.PID,
			"name":   p.Name,
			"points": p.Points,
			"health": p.Health,
			"rank":   g.rankOfPlayer(p),
		})
	}
	return list
}

// TeamsInfo returns the per-team summaries served by the admin API.
func (g *Game) TeamsInfo() []map[string]interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	list := make([]map[string]interface{}, 0, len(g.teams))
	for _, t := range g.teamsByTID() {
		list = append(list, map[string]interface{}{
			"tid":          t.TID,
			"name":         t.Name,
			"player_count": len(t.players),
			"points":       t.points(),
			"rank":         g.rankOfTeam(t),
		})
	}
	return list
}

// Snapshot returns the full pgt state under the game lock.
func (g *Game) Snapshot() PGTSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() PGTSnapshot {
	snap := PGTSnapshot{
		Game:    g.PGTData(),
		Players: make([]map[string]interface{}, 0, len(g.players)),
		Teams:   make([]map[string]interface{}, 0, len(g.teams)),
	}
	for _, p := range g.playersByPID() {
		snap.Players = append(snap.Players, p.PGTData())
	}
	for _, t := range g.teamsByTID() {
		snap.Teams = append(snap.Teams, t.PGTData())
	}
	return snap
}

func (g *Game) updateSpectators() {
	if len(g.spectators) == 0 {
		return
	}
	snap := g.snapshot()
	for s := range g.spectators {
		s.Update(snap)
	}
}

// playersByPID returns the players in ascending pid order, which is also
// their join order since pids are monotonic.
func (g *Game) playersByPID() []*Player {
	list := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PID < list[j].PID })
	return list
}

func (g *Game) teamsByTID() []*Team {
	list := make([]*Team, 0, len(g.teams))
	for _, t := range g.teams {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TID < list[j].TID })
	return list
}

func (g *Game) rankOfPlayer(p *Player) int {
	if g.players[p.PID] != p {
		return -1
	}
	list := g.playersByPID()
	sort.SliceStable(list, func(i, j int) bool { return list[i].Points > list[j].Points })
	for i, other := range list {
		if other == p {
			return i + 1
		}
	}
	return -1
}

func (g *Game) rankOfTeam(t *Team) int {
	if g.teams[t.TID] != t {
		return -1
	}
	list := g.teamsByTID()
	sort.SliceStable(list, func(i, j int) bool { return list[i].points() > list[j].points() })
	for i, other := range list {
		if other == t {
			return i + 1
		}
	}
	return -1
}

func (g *Game) playerIndex(p *Player) int {
	for i, other := range g.playersByPID() {
		if other == p {
			return i
		}
	}
	return -1
}
