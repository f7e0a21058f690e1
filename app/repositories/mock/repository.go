package mock

import (
	"sort"
	"sync"

	"postapp/app/models"
	"postapp/app/repositories"
)

type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex
}

type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
}

type TagRepository struct {
	tags   map[string]*models.Tag
	nextID int
	mutex  sync.RWMutex
}

// NewStore returns a Store backed by the in-memory mocks.
func NewStore() *repositories.Store {
	return &repositories.Store{
		Driver:   "mock",
		Posts:    NewPostRepository(),
		Comments: NewCommentRepository(),
		Tags:     NewTagRepository(),
	}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]*models.Comment),
		nextID:   1,
	}
}

func NewTagRepository() *TagRepository {
	return &TagRepository{
		tags:   make(map[string]*models.Tag),
		nextID: 1,
	}
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = post
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = post
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// sorted returns every post, newest first.
func (m *PostRepository) sorted() []*models.Post {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, post)
	}
	repositories.SortByPublish(posts)
	return posts
}

func (m *PostRepository) List(limit, offset int) ([]*models.Post, error) {
	return repositories.Paginate(m.sorted(), limit, offset), nil
}

func (m *PostRepository) ListPublished(tagSlug string, limit, offset int) ([]*models.Post, error) {
	return repositories.Paginate(repositories.FilterPublished(m.sorted(), tagSlug), limit, offset), nil
}

func (m *PostRepository) CountPublished(tagSlug string) (int, error) {
	return len(repositories.FilterPublished(m.sorted(), tagSlug)), nil
}

func (m *PostRepository) GetPublishedByID(id int) (*models.Post, error) {
	post, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) GetPublishedByDate(year, month, day int, slug string) (*models.Post, error) {
	for _, post := range repositories.FilterPublished(m.sorted(), "") {
		if post.Slug == slug && post.PublishedOn(year, month, day) {
			return post, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *PostRepository) SimilarPublished(post *models.Post, limit int) ([]*models.Post, error) {
	return repositories.RankSimilar(post, m.sorted(), limit), nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.ID = m.nextID
	m.nextID++
	m.comments[comment.ID] = comment
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return comment, nil
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[comment.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.comments[comment.ID] = comment
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	repositories.SortComments(comments)
	return comments, nil
}

func (m *CommentRepository) ListActiveByPost(postID int) ([]*models.Comment, error) {
	comments, _ := m.ListByPost(postID)
	active := comments[:0]
	for _, comment := range comments {
		if comment.Active {
			active = append(active, comment)
		}
	}
	return active, nil
}

// TagRepository implementation
func (m *TagRepository) Create(tag *models.Tag) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, ok := m.tags[tag.Slug]; ok {
		*tag = *existing
		return nil
	}
	tag.ID = m.nextID
	m.nextID++
	stored := *tag
	m.tags[tag.Slug] = &stored
	return nil
}

func (m *TagRepository) GetBySlug(slug string) (*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tag, ok := m.tags[slug]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *tag
	return &copied, nil
}

func (m *TagRepository) List() ([]*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tags := make([]*models.Tag, 0, len(m.tags))
	for _, tag := range m.tags {
		copied := *tag
		tags = append(tags, &copied)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}
