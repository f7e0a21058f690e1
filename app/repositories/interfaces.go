package repositories

import "postapp/app/models"

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List(limit, offset int) ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error

	// Reader-facing queries only ever see published posts, newest first.
	ListPublished(tagSlug string, limit, offset int) ([]*models.Post, error)
	CountPublished(tagSlug string) (int, error)
	GetPublishedByID(id int) (*models.Post, error)
	GetPublishedByDate(year, month, day int, slug string) (*models.Post, error)
	SimilarPublished(post *models.Post, limit int) ([]*models.Post, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	ListActiveByPost(postID int) ([]*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	// Create stores tag, or loads the existing tag with the same slug into it.
	Create(tag *models.Tag) error
	GetBySlug(slug string) (*models.Tag, error)
	List() ([]*models.Tag, error)
}
