package forms

import (
	"net/url"

	"postapp/app/models"
)

// CommentForm is the form readers fill in to comment on a post.
type CommentForm struct {
	Name  string `form:"name" validate:"required,max=80"`
	Email string `form:"email" validate:"required,email"`
	Body  string `form:"body" validate:"required"`

	Errors FieldErrors `form:"-" validate:"-"`
}

// NewCommentForm returns an empty, unbound form.
func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: FieldErrors{}}
}

// BindCommentForm fills a form from submitted values.
func BindCommentForm(values url.Values) *CommentForm {
	return &CommentForm{
		Name:   value(values, "name"),
		Email:  value(values, "email"),
		Body:   value(values, "body"),
		Errors: FieldErrors{},
	}
}

// Validate runs the field rules and reports whether the form is valid.
func (f *CommentForm) Validate() bool {
	f.Errors = check(f)
	return f.IsValid()
}

// IsValid reports whether the last validation found no errors.
func (f *CommentForm) IsValid() bool {
	return !f.Errors.Any()
}

// Comment builds an unsaved comment from the form data.
func (f *CommentForm) Comment() *models.Comment {
	return &models.Comment{
		Name:  f.Name,
		Email: f.Email,
		Body:  f.Body,
	}
}
