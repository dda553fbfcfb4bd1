package models

import (
	"errors"
	"strings"
	"time"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	c.Text = strings.TrimSpace(c.Text)
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Created.IsZero() {
		return errors.New("created cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate(now time.Time) {
	if c.Created.IsZero() {
		c.Created = now
	}
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	c.PostID = post.ID
	return nil
}

func (c *Comment) String() string {
	return c.Text
}
