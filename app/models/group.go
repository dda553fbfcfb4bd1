package models

import "strings"

// Validate checks title, slug and description.
func (g *Group) Validate() error {
	g.Title = strings.TrimSpace(g.Title)
	g.Slug = strings.TrimSpace(g.Slug)
	g.Description = strings.TrimSpace(g.Description)
	return validate.Struct(g)
}

func (g *Group) String() string {
	return g.Title
}
