package services

import (
	"errors"
	"fmt"
	"time"

	"postapp/app/models"
	"postapp/app/pagination"
	"postapp/app/repositories"
)

const (
	DefaultPageSize     = 3
	DefaultSimilarLimit = 4
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo     repositories.PostRepository
	commentRepo  repositories.CommentRepository
	tagRepo      repositories.TagRepository
	pageSize     int
	similarLimit int
}

// PostPage is one page of the published post list.
type PostPage struct {
	Page  *pagination.Page `json:"page"`
	Posts []*models.Post   `json:"posts"`
	// Tag is set when the list is filtered by tag.
	Tag *models.Tag `json:"tag,omitempty"`
}

// PostDetail is everything the detail view shows besides the comment form.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
	Similar  []*models.Post    `json:"similar_posts"`
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, tagRepo repositories.TagRepository) *PostService {
	return &PostService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		tagRepo:      tagRepo,
		pageSize:     DefaultPageSize,
		similarLimit: DefaultSimilarLimit,
	}
}

func (s *PostService) SetPageSize(n int) {
	if n > 0 {
		s.pageSize = n
	}
}

func (s *PostService) SetSimilarLimit(n int) {
	if n >= 0 {
		s.similarLimit = n
	}
}

// CreatePost validates post, makes sure its tags exist and stores it.
// Tag names are stored on the post as their slugs.
func (s *PostService) CreatePost(post *models.Post) error {
	post.BeforeCreate()
	tags, err := normalizeTags(post)
	if err != nil {
		return err
	}
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}
	if err := s.saveTags(tags); err != nil {
		return err
	}
	return s.postRepo.Create(post)
}

// normalizeTags replaces post.Tags with the slugs of the names it holds,
// without duplicates, and returns the tags to store.
func normalizeTags(post *models.Post) ([]*models.Tag, error) {
	if len(post.Tags) == 0 {
		return nil, nil
	}
	tags := make([]*models.Tag, 0, len(post.Tags))
	slugs := make([]string, 0, len(post.Tags))
	seen := make(map[string]bool)
	for _, name := range post.Tags {
		tag := models.NewTag(name)
		if err := tag.Validate(); err != nil {
			return nil, fmt.Errorf("invalid tag %q: %w", name, err)
		}
		if seen[tag.Slug] {
			continue
		}
		seen[tag.Slug] = true
		tags = append(tags, tag)
		slugs = append(slugs, tag.Slug)
	}
	post.Tags = slugs
	return tags, nil
}

func (s *PostService) saveTags(tags []*models.Tag) error {
	for _, tag := range tags {
		if err := s.tagRepo.Create(tag); err != nil {
			return fmt.Errorf("failed to create tag %q: %w", tag.Slug, err)
		}
	}
	return nil
}

// GetPost retrieves a post by ID with all its comments, whatever its status.
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	post.Comments = comments

	return post, nil
}

// ListAll lists posts of any status, newest first.
func (s *PostService) ListAll(limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(limit, offset)
}

// ListPublished returns the requested page of published posts. rawPage is
// the unparsed page query value; bad values fall back as the paginator
// decides. An unknown tag slug yields repositories.ErrNotFound.
func (s *PostService) ListPublished(tagSlug, rawPage string) (*PostPage, error) {
	result := &PostPage{}
	if tagSlug != "" {
		tag, err := s.tagRepo.GetBySlug(tagSlug)
		if err != nil {
			return nil, err
		}
		result.Tag = tag
	}

	count, err := s.postRepo.CountPublished(tagSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	result.Page = pagination.New(count, s.pageSize).Resolve(rawPage)

	result.Posts, err = s.postRepo.ListPublished(tagSlug, result.Page.Limit(), result.Page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return result, nil
}

// GetPublishedByID returns a post only when it is published.
func (s *PostService) GetPublishedByID(id int) (*models.Post, error) {
	return s.postRepo.GetPublishedByID(id)
}

// PostDetail loads a published post by its date and slug together with its
// active comments and similar posts.
func (s *PostService) PostDetail(year, month, day int, slug string) (*PostDetail, error) {
	post, err := s.postRepo.GetPublishedByDate(year, month, day, slug)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListActiveByPost(post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	similar, err := s.postRepo.SimilarPublished(post, s.similarLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get similar posts: %w", err)
	}

	return &PostDetail{Post: post, Comments: comments, Similar: similar}, nil
}

// UpdatePost updates an existing post with validation
func (s *PostService) UpdatePost(post *models.Post) error {
	existing, err := s.postRepo.GetByID(post.ID)
	if err != nil {
		return err
	}

	// Preserve creation time
	post.Created = existing.Created
	post.Updated = time.Now().UTC()
	if post.Publish.IsZero() {
		post.Publish = existing.Publish
	}

	tags, err := normalizeTags(post)
	if err != nil {
		return err
	}
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}
	if err := s.saveTags(tags); err != nil {
		return err
	}
	return s.postRepo.Update(post)
}

// SetStatus publishes or withdraws the post with the given id.
func (s *PostService) SetStatus(id int, status models.Status) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	post.Status = status
	if err := s.UpdatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(id int) error {
	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return fmt.Errorf("failed to get comments: %w", err)
	}

	for _, comment := range comments {
		if err := s.commentRepo.Delete(comment.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to delete comment %d: %w", comment.ID, err)
		}
	}

	return s.postRepo.Delete(id)
}
