package services

import (
	"context"
	"fmt"

	"postapp/app/forms"
	"postapp/app/mail"
	"postapp/app/models"
)

// ShareService emails post recommendations.
type ShareService struct {
	sender mail.Sender
	from   string
}

func NewShareService(sender mail.Sender, from string) *ShareService {
	if from == "" {
		from = mail.DefaultFrom
	}
	return &ShareService{sender: sender, from: from}
}

// SharePost validates form and sends the recommendation for post, linking to
// postURL. It reports whether a message was sent; an invalid form is not an
// error.
func (s *ShareService) SharePost(ctx context.Context, post *models.Post, postURL string, form *forms.EmailPostForm) (bool, error) {
	if !form.Validate() {
		return false, nil
	}

	msg := RecommendationMessage(post, postURL, form)
	msg.From = s.from
	if err := s.sender.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("failed to send recommendation: %w", err)
	}
	return true, nil
}

// RecommendationMessage composes the email for a valid share form.
func RecommendationMessage(post *models.Post, postURL string, form *forms.EmailPostForm) mail.Message {
	return mail.Message{
		To:      []string{form.To},
		Subject: fmt.Sprintf("%s recommends you read %s", form.Name, post.Title),
		Body:    fmt.Sprintf("Read %s at %s\n\n%s's comment: %s", post.Title, postURL, form.Name, form.Comments),
	}
}
