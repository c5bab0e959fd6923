package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tagserver/game"
)

// ListGamemodes returns the names of all registered gamemodes.
func ListGamemodes(c *gin.Context, games *game.Manager) {
	c.JSON(http.StatusOK, gin.H{"gamemodes": games.ModeNames()})
}
