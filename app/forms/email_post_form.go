package forms

import "net/url"

// EmailPostForm is the form used to recommend a post by email.
type EmailPostForm struct {
	Name     string `form:"name" validate:"required,max=25"`
	Email    string `form:"email" validate:"required,email"`
	To       string `form:"to" validate:"required,email"`
	Comments string `form:"comments"`

	Errors FieldErrors `form:"-" validate:"-"`
}

func NewEmailPostForm() *EmailPostForm {
	return &EmailPostForm{Errors: FieldErrors{}}
}

func BindEmailPostForm(values url.Values) *EmailPostForm {
	return &EmailPostForm{
		Name:     value(values, "name"),
		Email:    value(values, "email"),
		To:       value(values, "to"),
		Comments: value(values, "comments"),
		Errors:   FieldErrors{},
	}
}

func (f *EmailPostForm) Validate() bool {
	f.Errors = check(f)
	return f.IsValid()
}

func (f *EmailPostForm) IsValid() bool {
	return !f.Errors.Any()
}
