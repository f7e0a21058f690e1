package repositories

import (
	"fmt"
	"sort"

	"postapp/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerTagRepository implements TagRepository using BadgerDB. Tags are
// keyed by slug.
type BadgerTagRepository struct {
	db *badger.DB
}

func NewBadgerTagRepository(db *badger.DB) *BadgerTagRepository {
	return &BadgerTagRepository{db: db}
}

func tagKey(slug string) []byte {
	return []byte(TagKeyPrefix + slug)
}

// Create stores tag unless a tag with the same slug already exists, in which
// case the stored tag is copied into tag.
func (r *BadgerTagRepository) Create(tag *models.Tag) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(tagKey(tag.Slug))
		if err == nil {
			return item.Value(func(val []byte) error {
				return unmarshalEntity(val, tag)
			})
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		id, err := getNextID(txn, TagSeqKey)
		if err != nil {
			return err
		}
		tag.ID = id

		data, err := marshalEntity(tag)
		if err != nil {
			return err
		}
		return txn.Set(tagKey(tag.Slug), data)
	})
}

func (r *BadgerTagRepository) GetBySlug(slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tagKey(slug))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &tag)
		})
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// List returns all tags ordered by name.
func (r *BadgerTagRepository) List() ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(TagKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var tag models.Tag
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &tag)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal tag: %w", err)
			}
			tags = append(tags, &tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}
