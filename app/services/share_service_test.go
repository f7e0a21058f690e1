package services

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"postapp/app/forms"
	"postapp/app/mail"
	"postapp/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharePost(t *testing.T) {
	post := &models.Post{ID: 1, Title: "Hello World", Slug: "hello-world"}
	postURL := "http://example.com/blog/2024/3/15/hello-world/"

	shareForm := func(to string) *forms.EmailPostForm {
		return forms.BindEmailPostForm(url.Values{
			"name":     {"Ann"},
			"email":    {"ann@example.com"},
			"to":       {to},
			"comments": {"Worth a look"},
		})
	}

	t.Run("valid form sends", func(t *testing.T) {
		outbox := mail.NewOutbox()
		service := NewShareService(outbox, "blog@example.com")

		sent, err := service.SharePost(context.Background(), post, postURL, shareForm("bob@example.com"))
		require.NoError(t, err)
		assert.True(t, sent)

		msgs := outbox.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "blog@example.com", msgs[0].From)
		assert.Equal(t, []string{"bob@example.com"}, msgs[0].To)
		assert.Equal(t, "Ann recommends you read Hello World", msgs[0].Subject)
		assert.Equal(t, "Read Hello World at "+postURL+"\n\nAnn's comment: Worth a look", msgs[0].Body)
	})

	t.Run("invalid form does not send", func(t *testing.T) {
		outbox := mail.NewOutbox()
		service := NewShareService(outbox, "")

		form := shareForm("not-an-email")
		sent, err := service.SharePost(context.Background(), post, postURL, form)
		require.NoError(t, err)
		assert.False(t, sent)
		assert.NotEmpty(t, form.Errors.Get("to"))
		assert.Empty(t, outbox.Messages())
	})

	t.Run("default sender address", func(t *testing.T) {
		outbox := mail.NewOutbox()
		_, err := NewShareService(outbox, "").SharePost(context.Background(), post, postURL, shareForm("bob@example.com"))
		require.NoError(t, err)
		assert.Equal(t, mail.DefaultFrom, outbox.Messages()[0].From)
	})

	t.Run("send failure", func(t *testing.T) {
		outbox := mail.NewOutbox()
		outbox.Err = errors.New("relay down")

		sent, err := NewShareService(outbox, "").SharePost(context.Background(), post, postURL, shareForm("bob@example.com"))
		assert.Error(t, err)
		assert.False(t, sent)
	})
}
