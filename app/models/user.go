package models

import (
	"strings"
	"time"
)

// Validate checks the username format and that a password hash is present.
func (u *User) Validate() error {
	u.Username = strings.TrimSpace(u.Username)
	return validate.Struct(u)
}

// BeforeCreate sets up any necessary fields before creation
func (u *User) BeforeCreate(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
}

func (u *User) String() string {
	return u.Username
}
