package repositories

import (
	"fmt"

	"postapp/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

func postKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", PostKeyPrefix, id))
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(postKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &post)
		})
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

// all loads every stored post, newest first.
func (r *BadgerPostRepository) all() ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	SortByPublish(posts)
	return posts, nil
}

// List retrieves a paginated list of posts of any status
func (r *BadgerPostRepository) List(limit, offset int) ([]*models.Post, error) {
	posts, err := r.all()
	if err != nil {
		return nil, err
	}
	return Paginate(posts, limit, offset), nil
}

// ListPublished retrieves a page of published posts, optionally by tag
func (r *BadgerPostRepository) ListPublished(tagSlug string, limit, offset int) ([]*models.Post, error) {
	posts, err := r.all()
	if err != nil {
		return nil, err
	}
	return Paginate(FilterPublished(posts, tagSlug), limit, offset), nil
}

// CountPublished counts published posts, optionally by tag
func (r *BadgerPostRepository) CountPublished(tagSlug string) (int, error) {
	posts, err := r.all()
	if err != nil {
		return 0, err
	}
	return len(FilterPublished(posts, tagSlug)), nil
}

// GetPublishedByID retrieves a post by ID if it is published
func (r *BadgerPostRepository) GetPublishedByID(id int) (*models.Post, error) {
	post, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, ErrNotFound
	}
	return post, nil
}

// GetPublishedByDate retrieves the published post with slug on the given date
func (r *BadgerPostRepository) GetPublishedByDate(year, month, day int, slug string) (*models.Post, error) {
	posts, err := r.all()
	if err != nil {
		return nil, err
	}
	for _, p := range FilterPublished(posts, "") {
		if p.Slug == slug && p.PublishedOn(year, month, day) {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// SimilarPublished ranks published posts by the number of tags shared with post
func (r *BadgerPostRepository) SimilarPublished(post *models.Post, limit int) ([]*models.Post, error) {
	if len(post.Tags) == 0 {
		return []*models.Post{}, nil
	}
	posts, err := r.all()
	if err != nil {
		return nil, err
	}
	return RankSimilar(post, posts, limit), nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(post.ID)

		// Verify post exists
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(id)

		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return txn.Delete(key)
	})
}
