package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tagserver/game"
)

type createTeamRequest struct {
	Name string `json:"name"`
}

type movePlayerRequest struct {
	PID int `json:"pid"`
}

func teamSummary(t *game.Team) gin.H {
	return gin.H{
		"tid":          t.TID,
		"name":         t.Name,
		"player_count": t.PlayerCount(),
		"points":       t.Points(),
		"rank":         t.Rank(),
	}
}

// managedTeamGame resolves the game like ownedGame and additionally rejects
// team changes on games whose gamemode owns the team layout.
func managedTeamGame(c *gin.Context, games *game.Manager) *game.Game {
	g := ownedGame(c, games)
	if g == nil {
		return nil
	}
	if g.TeamsManaged() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Teams of this game are managed by the gamemode"})
		return nil
	}
	return g
}

func teamParam(c *gin.Context, g *game.Game) *game.Team {
	tid, err := strconv.Atoi(c.Param("tid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid team id"})
		return nil
	}
	t := g.TeamByTID(tid)
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Team not found"})
		return nil
	}
	return t
}

// CreateTeam adds a new team to a game. Team names are unique per game.
func CreateTeam(c *gin.Context, games *game.Manager, logger *zap.Logger) {
	g := managedTeamGame(c, games)
	if g == nil {
		return
	}

	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Team name is required"})
		return
	}
	if g.TeamByName(req.Name) != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "A team with this name already exists"})
		return
	}

	t := g.NewTeam(req.Name)
	g.AddTeam(t)
	logger.Info("Created team",
		zap.String("gid", g.GID),
		zap.Int("tid", t.TID),
		zap.String("name", t.Name),
	)
	c.JSON(http.StatusCreated, teamSummary(t))
}

// TeamInfo returns the summary of one team.
func TeamInfo(c *gin.Context, games *game.Manager) {
	g := ownedGame(c, games)
	if g == nil {
		return
	}
	t := teamParam(c, g)
	if t == nil {
		return
	}
	c.JSON(http.StatusOK, teamSummary(t))
}

// MovePlayer assigns a player to a team. Team id 0 removes the player from
// its current team instead.
func MovePlayer(c *gin.Context, games *game.Manager, logger *zap.Logger) {
	g := managedTeamGame(c, games)
	if g == nil {
		return
	}

	var req movePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	p := g.PlayerByPID(req.PID)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Player not found"})
		return
	}

	tid, err := strconv.Atoi(c.Param("tid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid team id"})
		return
	}
	if tid == 0 {
		g.LeaveTeam(p)
		c.Status(http.StatusNoContent)
		return
	}

	t := g.TeamByTID(tid)
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Team not found"})
		return
	}
	g.MoveToTeam(p, t)
	logger.Debug("Moved player to team",
		zap.String("gid", g.GID),
		zap.Int("pid", p.PID),
		zap.Int("tid", t.TID),
	)
	c.Status(http.StatusNoContent)
}

// DeleteTeam removes a team. Its members stay in the game without a team.
func DeleteTeam(c *gin.Context, games *game.Manager, logger *zap.Logger) {
	g := managedTeamGame(c, games)
	if g == nil {
		return
	}
	t := teamParam(c, g)
	if t == nil {
		return
	}
	g.RemoveTeam(t)
	logger.Info("Removed team",
		zap.String("gid", g.GID),
		zap.Int("tid", t.TID),
	)
	c.Status(http.StatusNoContent)
}
