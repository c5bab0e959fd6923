package models

import (
	"gorm.io/gorm"
)

// User is a registered account in the user directory. The name is what shows
// up on phaser screens and scoreboards, so it is kept short.
type User struct {
	gorm.Model
	Name     string `gorm:"size:32;not null"`
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt hash
}

// UserID and DisplayName make User usable as a session identity.

func (u *User) UserID() uint {
	return u.ID
}

func (u *User) DisplayName() string {
	return u.Name
}
