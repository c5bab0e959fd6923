package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tagserver/game"
)

type createGameRequest struct {
	Gamemode string `json:"gamemode"`
}

type startGameRequest struct {
	Delay int `json:"delay"`
}

func gameSummary(g *game.Game) gin.H {
	return gin.H{
		"gid":          g.GID,
		"gamemode":     g.Mode,
		"player_count": g.PlayerCount(),
		"team_count":   g.TeamCount(),
		"start_time":   g.StartTime(),
		"created_at":   g.CreatedAt,
		"created_by":   g.CreatedBy.DisplayName(),
		"valid":        g.Valid(),
	}
}

// ownedGame resolves the gid route parameter and checks that the
// authenticated user created the game. Writes the error response itself
// and returns nil when the caller should bail out.
func ownedGame(c *gin.Context, games *game.Manager) *game.Game {
	g := games.Game(c.Param("gid"))
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Game not found"})
		return nil
	}
	user := currentUser(c)
	if g.CreatedBy.UserID() != user.UserID() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the creator of the game may manage it"})
		return nil
	}
	return g
}

// CreateGame starts a new session with the requested gamemode.
func CreateGame(c *gin.Context, games *game.Manager, logger *zap.Logger) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	gid, err := games.CreateGame(req.Gamemode, currentUser(c))
	if err != nil {
		if errors.Is(err, game.ErrUnknownGamemode) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown gamemode"})
			return
		}
		logger.Error("Failed to create game", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create game"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"gid": gid})
}

// ListGames returns a summary of every live game.
func ListGames(c *gin.Context, games *game.Manager) {
	list := make([]gin.H, 0)
	for _, g := range games.Games() {
		list = append(list, gameSummary(g))
	}
	c.JSON(http.StatusOK, gin.H{"games": list})
}

// GameInfo returns the full state of one game including players and teams.
// Restricted to the game's creator.
func GameInfo(c *gin.Context, games *game.Manager) {
	g := ownedGame(c, games)
	if g == nil {
		return
	}
	info := gameSummary(g)
	info["players"] = g.PlayersInfo()
	info["teams"] = g.TeamsInfo()
	c.JSON(http.StatusOK, info)
}

// StartGame schedules the countdown for a game. Responds with 409 when the
// gamemode requirements are not met.
func StartGame(c *gin.Context, games *game.Manager, logger *zap.Logger) {
	g := ownedGame(c, games)
	if g == nil {
		return
	}

	var req startGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.Delay < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Delay must not be negative"})
		return
	}

	if !g.ScheduleStart(req.Delay) {
		c.JSON(http.StatusConflict, gin.H{"message": "Game does not meet the gamemode requirements to start"})
		return
	}
	logger.Info("Scheduled game start",
		zap.String("gid", g.GID),
		zap.Int("delay", req.Delay),
	)
	c.Status(http.StatusNoContent)
}

// DeleteGame closes a game and disconnects every player from it.
func DeleteGame(c *gin.Context, games *game.Manager, logger *zap.Logger) {
	g := ownedGame(c, games)
	if g == nil {
		return
	}
	games.CloseGame(g.GID)
	logger.Info("Closed game", zap.String("gid", g.GID))
	c.Status(http.StatusNoContent)
}
