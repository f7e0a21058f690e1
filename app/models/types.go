package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "DF"
	StatusPublished Status = "PB"
)

// Post represents a blog entry. Tags holds tag slugs.
type Post struct {
	ID       int        `json:"id" db:"id" validate:"gte=0"`
	Title    string     `json:"title" db:"title" validate:"required,max=250"`
	Slug     string     `json:"slug" db:"slug" validate:"required,max=250,slug"`
	Body     string     `json:"body" db:"body" validate:"required"`
	Publish  time.Time  `json:"publish" db:"publish" validate:"required"`
	Created  time.Time  `json:"created" db:"created"`
	Updated  time.Time  `json:"updated" db:"updated"`
	Status   Status     `json:"status" db:"status" validate:"oneof=DF PB"`
	Tags     []string   `json:"tags" db:"-" validate:"dive,required,slug"`
	Comments []*Comment `json:"comments,omitempty" db:"-" validate:"-"`
}

// Comment represents a reader comment on a blog post.
type Comment struct {
	ID      int       `json:"id" db:"id" validate:"gte=0"`
	PostID  int       `json:"post_id" db:"post_id" validate:"required,gt=0"`
	Name    string    `json:"name" db:"name" validate:"required,max=80"`
	Email   string    `json:"email" db:"email" validate:"required,email"`
	Body    string    `json:"body" db:"body" validate:"required"`
	Active  bool      `json:"active" db:"active"`
	Created time.Time `json:"created" db:"created" validate:"required"`
	Updated time.Time `json:"updated" db:"updated"`
	Post    *Post     `json:"-" db:"-" validate:"-"`
}

// Tag is a label attached to posts.
type Tag struct {
	ID   int    `json:"id" db:"id" validate:"gte=0"`
	Name string `json:"name" db:"name" validate:"required,max=100"`
	Slug string `json:"slug" db:"slug" validate:"required,max=100,slug"`
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}
