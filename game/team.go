package game

// Team groups players within one game. Team points are the sum of the member
// points; a player is in at most one team at a time.
type Team struct {
	game *Game

	TID  int
	Name string

	players map[int]*Player
}

func (t *Team) PlayerCount() int {
	t.game.mu.Lock()
	defer t.game.mu.Unlock()
	return len(t.players)
}

// Points returns the summed points of all members.
func (t *Team) Points() int {
	t.game.mu.Lock()
	defer t.game.mu.Unlock()
	return t.points()
}

func (t *Team) Rank() int {
	return t.game.RankOfTeam(t)
}

// Contains reports whether the player is currently a member.
func (t *Team) Contains(p *Player) bool {
	t.game.mu.Lock()
	defer t.game.mu.Unlock()
	return t.players[p.PID] == p
}

// PGTData returns the t_-prefixed derived fields. Caller must hold the game
// lock.
func (t *Team) PGTData() map[string]interface{} {
	return map[string]interface{}{
		"t_tid":          t.TID,
		"t_name":         t.Name,
		"t_points":       t.points(),
		"t_rank":         t.game.rankOfTeam(t),
		"t_player_count": len(t.players),
	}
}

func (t *Team) points() int {
	sum := 0
	for _, p := range t.players {
		sum += p.Points
	}
	return sum
}

func (t *Team) join(p *Player) {
	t.players[p.PID] = p
}

func (t *Team) leave(p *Player) {
	delete(t.players, p.PID)
}

func (t *Team) members() []*Player {
	list := make([]*Player, 0, len(t.players))
	for _, p := range t.players {
		list = append(list, p)
	}
	return list
}
