package models

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// FieldErrors maps a validation failure to per-field messages keyed by the
// field's json name. Errors that are not validation failures come back under "".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "username":
		return "Enter a valid username. Letters, digits and @/./+/-/_ only."
	case "gt", "gte":
		return "Select a valid choice."
	default:
		return "Invalid value."
	}
}

// User is the identity record behind authors, commenters and followers.
type User struct {
	ID           int       `json:"id" validate:"gte=0"`
	Username     string    `json:"username" validate:"required,max=150,username"`
	PasswordHash string    `json:"password_hash" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`
}

// Group is a topical category posts can be filed under.
type Group struct {
	ID          int    `json:"id" validate:"gte=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description" validate:"required"`
}

// Post is a unit of authored content.
type Post struct {
	ID       int       `json:"id" validate:"gte=0"`
	Text     string    `json:"text" validate:"required"`
	PubDate  time.Time `json:"pub_date"`
	AuthorID int       `json:"author_id" validate:"required,gt=0"`
	GroupID  *int      `json:"group_id,omitempty" validate:"omitempty,gt=0"`
	Image    string    `json:"image,omitempty" validate:"max=255"`

	Author   *User      `json:"-" validate:"-"`
	Group    *Group     `json:"-" validate:"-"`
	Comments []*Comment `json:"-" validate:"-"`
}

// Comment is a reply to a post.
type Comment struct {
	ID       int       `json:"id" validate:"gte=0"`
	PostID   int       `json:"post_id" validate:"required,gt=0"`
	AuthorID int       `json:"author_id" validate:"required,gt=0"`
	Text     string    `json:"text" validate:"required"`
	Created  time.Time `json:"created"`

	Author *User `json:"-" validate:"-"`
}

// Follow is a directed subscription edge from UserID to AuthorID.
type Follow struct {
	UserID    int       `json:"user_id" validate:"required,gt=0"`
	AuthorID  int       `json:"author_id" validate:"required,gt=0"`
	CreatedAt time.Time `json:"created_at"`
}
