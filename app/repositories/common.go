package repositories

import (
	"encoding/json"
	"fmt"
	"sort"

	"postapp/app/models"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	TagKeyPrefix     = "tag:"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
	TagSeqKey     = "seq:tag"
)

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			id = int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	// Store new ID
	idBytes := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}

	return id, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// The helpers below implement the published-post queries over an in-memory
// slice. They back the badger store and the mock repositories.

// FilterPublished keeps published posts, optionally restricted to a tag.
func FilterPublished(posts []*models.Post, tagSlug string) []*models.Post {
	var out []*models.Post
	for _, p := range posts {
		if !p.IsPublished() {
			continue
		}
		if tagSlug != "" && !p.HasTag(tagSlug) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortByPublish orders posts newest first, breaking ties by descending ID.
func SortByPublish(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Publish.Equal(posts[j].Publish) {
			return posts[i].Publish.After(posts[j].Publish)
		}
		return posts[i].ID > posts[j].ID
	})
}

// Paginate returns the [offset, offset+limit) window of posts.
func Paginate(posts []*models.Post, limit, offset int) []*models.Post {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(posts) {
		return []*models.Post{}
	}
	end := len(posts)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return posts[offset:end]
}

// RankSimilar picks published candidates sharing at least one tag with
// post, excluding post itself, ordered by shared tag count then publish date.
func RankSimilar(post *models.Post, candidates []*models.Post, limit int) []*models.Post {
	type ranked struct {
		post   *models.Post
		shared int
	}
	var rs []ranked
	for _, c := range FilterPublished(candidates, "") {
		if c.ID == post.ID {
			continue
		}
		if n := post.SharedTags(c); n > 0 {
			rs = append(rs, ranked{post: c, shared: n})
		}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].shared != rs[j].shared {
			return rs[i].shared > rs[j].shared
		}
		if !rs[i].post.Publish.Equal(rs[j].post.Publish) {
			return rs[i].post.Publish.After(rs[j].post.Publish)
		}
		return rs[i].post.ID > rs[j].post.ID
	})
	if limit >= 0 && len(rs) > limit {
		rs = rs[:limit]
	}
	out := make([]*models.Post, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.post)
	}
	return out
}

// SortComments orders comments oldest first.
func SortComments(comments []*models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].Created.Equal(comments[j].Created) {
			return comments[i].Created.Before(comments[j].Created)
		}
		return comments[i].ID < comments[j].ID
	})
}
