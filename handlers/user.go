package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tagserver/auth"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser creates a new account and returns a fresh access token.
func RegisterUser(c *gin.Context, directory *auth.UserDirectory, logger *zap.Logger) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and password are required"})
		return
	}

	user, err := directory.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailInUse) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email address is already registered"})
			return
		}
		logger.Error("Failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register user"})
		return
	}

	token, err := directory.GenerateAccessToken(user)
	if err != nil {
		logger.Error("Failed to generate access token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate access token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"access_token": token})
}

// Login exchanges email/password credentials for an access token.
func Login(c *gin.Context, directory *auth.UserDirectory, logger *zap.Logger) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, ok := directory.Authenticate(c.Request.Context(), req.Email, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Email or password is incorrect"})
		return
	}

	token, err := directory.GenerateAccessToken(user)
	if err != nil {
		logger.Error("Failed to generate access token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// UserInfo returns the profile of the authenticated user.
func UserInfo(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"name": user.Name, "email": user.Email})
}

// DeleteUser removes the authenticated user's account.
func DeleteUser(c *gin.Context, directory *auth.UserDirectory, logger *zap.Logger) {
	user := currentUser(c)
	if err := directory.Delete(c.Request.Context(), user); err != nil {
		logger.Error("Failed to delete user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}
	c.Status(http.StatusNoContent)
}
