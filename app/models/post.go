package models

import (
	"errors"
	"strings"
	"time"
)

// shortTextLen is how much of a post's text String shows.
const shortTextLen = 15

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	p.Text = strings.TrimSpace(p.Text)
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.PubDate.IsZero() {
		return errors.New("pub_date cannot be zero")
	}

	return nil
}

// BeforeCreate stamps the publication date. It is never recomputed afterwards.
func (p *Post) BeforeCreate(now time.Time) {
	if p.PubDate.IsZero() {
		p.PubDate = now
	}
}

// SetGroup attaches the post to a group, or detaches it when group is nil.
func (p *Post) SetGroup(group *Group) {
	p.Group = group
	if group == nil {
		p.GroupID = nil
		return
	}
	id := group.ID
	p.GroupID = &id
}

// InGroup reports whether the post is filed under the given group.
func (p *Post) InGroup(groupID int) bool {
	return p.GroupID != nil && *p.GroupID == groupID
}

// AddComment appends a comment to the post's thread
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}
	if err := comment.SetPost(p); err != nil {
		return err
	}
	p.Comments = append(p.Comments, comment)
	return nil
}

func (p *Post) String() string {
	runes := []rune(p.Text)
	if len(runes) <= shortTextLen {
		return p.Text
	}
	return string(runes[:shortTextLen])
}
