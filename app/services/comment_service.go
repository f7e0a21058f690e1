package services

import (
	"fmt"
	"time"

	"postapp/app/forms"
	"postapp/app/models"
	"postapp/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// AddComment validates form and, when it is valid, stores an active comment
// on post. An invalid form returns a nil comment and a nil error; the field
// errors are left on the form.
func (s *CommentService) AddComment(post *models.Post, form *forms.CommentForm) (*models.Comment, error) {
	if !form.Validate() {
		return nil, nil
	}

	comment := form.Comment()
	if err := comment.Attach(post); err != nil {
		return nil, err
	}
	comment.Active = true
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	return comment, nil
}

// ActiveComments lists the comments readers may see, oldest first.
func (s *CommentService) ActiveComments(postID int) ([]*models.Comment, error) {
	return s.commentRepo.ListActiveByPost(postID)
}

// ListPostComments retrieves all comments for a post
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, fmt.Errorf("post not found: %w", err)
	}
	return s.commentRepo.ListByPost(postID)
}

// SetActive shows or hides a comment.
func (s *CommentService) SetActive(id int, active bool) error {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return err
	}
	comment.Active = active
	comment.Updated = time.Now().UTC()
	return s.commentRepo.Update(comment)
}

// DeleteComment deletes a comment
func (s *CommentService) DeleteComment(id int) error {
	if _, err := s.commentRepo.GetByID(id); err != nil {
		return err
	}
	return s.commentRepo.Delete(id)
}
