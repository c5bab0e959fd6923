package models

import (
	"github.com/dgrijalva/jwt-go"
)

// AccessClaims is the JWT claim set of an access token.
type AccessClaims struct {
	UserID uint   `json:"userid"`
	Name   string `json:"name"`
	jwt.StandardClaims
}
