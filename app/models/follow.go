package models

import (
	"errors"
	"time"
)

// ErrSelfFollow is returned when a user tries to subscribe to themselves.
var ErrSelfFollow = errors.New("users cannot follow themselves")

// Validate checks the edge endpoints. Self-follow is rejected here rather than
// by storage.
func (f *Follow) Validate() error {
	if err := validate.Struct(f); err != nil {
		return err
	}
	if f.IsSelf() {
		return ErrSelfFollow
	}
	return nil
}

// IsSelf reports whether both ends of the edge are the same user.
func (f *Follow) IsSelf() bool {
	return f.UserID == f.AuthorID
}

// BeforeCreate sets up any necessary fields before creation
func (f *Follow) BeforeCreate(now time.Time) {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
}
