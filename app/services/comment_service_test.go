package services

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"postapp/app/forms"
	"postapp/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentForm(name, email, body string) *forms.CommentForm {
	return forms.BindCommentForm(url.Values{
		"name":  {name},
		"email": {email},
		"body":  {body},
	})
}

func TestCommentService(t *testing.T) {
	store, posts, service := newServices()
	post := publishedPost(t, posts, "commented", time.Now())

	t.Run("add valid comment", func(t *testing.T) {
		comment, err := service.AddComment(post, newCommentForm("Ann", "ann@example.com", "Nice post"))
		require.NoError(t, err)
		require.NotNil(t, comment)
		assert.Equal(t, post.ID, comment.PostID)
		assert.True(t, comment.Active)
		assert.False(t, comment.Created.IsZero())

		stored, err := store.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("add invalid comment", func(t *testing.T) {
		form := newCommentForm("", "not-an-email", "")
		comment, err := service.AddComment(post, form)
		assert.NoError(t, err)
		assert.Nil(t, comment)
		assert.False(t, form.IsValid())
		assert.NotEmpty(t, form.Errors.Get("name"))
		assert.NotEmpty(t, form.Errors.Get("email"))
		assert.NotEmpty(t, form.Errors.Get("body"))

		stored, err := store.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("name too long", func(t *testing.T) {
		form := newCommentForm(strings.Repeat("a", 81), "ann@example.com", "x")
		comment, err := service.AddComment(post, form)
		assert.NoError(t, err)
		assert.Nil(t, comment)
	})

	t.Run("hide and show comment", func(t *testing.T) {
		require.NoError(t, service.SetActive(1, false))

		active, err := service.ActiveComments(post.ID)
		assert.NoError(t, err)
		assert.Empty(t, active)

		all, err := service.ListPostComments(post.ID)
		assert.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, service.SetActive(1, true))
		active, err = service.ActiveComments(post.ID)
		assert.NoError(t, err)
		assert.Len(t, active, 1)

		assert.ErrorIs(t, service.SetActive(99, false), repositories.ErrNotFound)
	})

	t.Run("list comments of missing post", func(t *testing.T) {
		_, err := service.ListPostComments(999)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("delete comment", func(t *testing.T) {
		err := service.DeleteComment(1)
		assert.NoError(t, err)

		_, err = store.Comments.GetByID(1)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		assert.ErrorIs(t, service.DeleteComment(1), repositories.ErrNotFound)
	})
}
