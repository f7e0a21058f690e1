package repositories

import (
	"testing"
	"time"

	"postapp/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNextID(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	assert.NoError(t, err)
	defer db.Close()

	t.Run("first ID", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("sequential IDs", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			// Get multiple IDs and verify they are sequential
			for i := 2; i <= 5; i++ {
				id, err := getNextID(txn, PostSeqKey)
				assert.NoError(t, err)
				assert.Equal(t, i, id)
			}
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("different sequence keys", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			// Test that different sequence keys maintain separate counters
			_, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)

			commentID, err := getNextID(txn, CommentSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, commentID, "Comment sequence should start from 1")

			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("persistence", func(t *testing.T) {
		// First transaction
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, "test:seq")
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)

		// Second transaction should continue from last ID
		err = db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, "test:seq")
			assert.NoError(t, err)
			assert.Equal(t, 2, id)
			return nil
		})
		assert.NoError(t, err)
	})
}

func TestMarshalEntity(t *testing.T) {
	t.Run("marshal post", func(t *testing.T) {
		post := &models.Post{
			ID:      1,
			Title:   "Test Post",
			Slug:    "test-post",
			Body:    "Test Body",
			Publish: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			Status:  models.StatusPublished,
			Tags:    []string{"go", "web"},
		}

		data, err := marshalEntity(post)
		assert.NoError(t, err)
		assert.NotEmpty(t, data)

		var unmarshaled models.Post
		err = unmarshalEntity(data, &unmarshaled)
		assert.NoError(t, err)
		assert.Equal(t, post.Slug, unmarshaled.Slug)
		assert.Equal(t, post.Status, unmarshaled.Status)
		assert.Equal(t, post.Tags, unmarshaled.Tags)
		assert.True(t, post.Publish.Equal(unmarshaled.Publish))
	})

	t.Run("comment drops parent pointer", func(t *testing.T) {
		comment := &models.Comment{
			ID:     1,
			PostID: 2,
			Name:   "Ann",
			Email:  "ann@example.com",
			Body:   "Nice",
			Active: true,
			Post:   &models.Post{ID: 2},
		}

		data, err := marshalEntity(comment)
		require.NoError(t, err)
		assert.NotContains(t, string(data), `"post"`)

		var unmarshaled models.Comment
		require.NoError(t, unmarshalEntity(data, &unmarshaled))
		assert.Equal(t, 2, unmarshaled.PostID)
		assert.True(t, unmarshaled.Active)
		assert.Nil(t, unmarshaled.Post)
	})

	t.Run("marshal invalid entity", func(t *testing.T) {
		invalidEntity := struct {
			Ch chan int
		}{
			Ch: make(chan int),
		}

		_, err := marshalEntity(invalidEntity)
		assert.Error(t, err)
	})
}

func TestUnmarshalEntity(t *testing.T) {
	t.Run("unmarshal comment", func(t *testing.T) {
		data := []byte(`{"id":1,"post_id":2,"name":"Ann","email":"ann@example.com","body":"Hi","active":true}`)
		var comment models.Comment
		err := unmarshalEntity(data, &comment)
		assert.NoError(t, err)
		assert.Equal(t, 2, comment.PostID)
		assert.Equal(t, "ann@example.com", comment.Email)
	})

	t.Run("unmarshal invalid JSON", func(t *testing.T) {
		var post models.Post
		assert.Error(t, unmarshalEntity([]byte(`{"id":1,invalid json}`), &post))
	})

	t.Run("unmarshal into nil", func(t *testing.T) {
		assert.Error(t, unmarshalEntity([]byte(`{"id":1}`), nil))
	})
}

func fixture(id int, status models.Status, publish int, tags ...string) *models.Post {
	return &models.Post{
		ID:      id,
		Slug:    "p",
		Status:  status,
		Publish: time.Date(2024, 1, publish, 0, 0, 0, 0, time.UTC),
		Tags:    tags,
	}
}

func TestFilterPublished(t *testing.T) {
	posts := []*models.Post{
		fixture(1, models.StatusPublished, 1, "go"),
		fixture(2, models.StatusDraft, 2, "go"),
		fixture(3, models.StatusPublished, 3, "web"),
	}

	assert.Len(t, FilterPublished(posts, ""), 2)

	byTag := FilterPublished(posts, "go")
	require.Len(t, byTag, 1)
	assert.Equal(t, 1, byTag[0].ID)

	assert.Empty(t, FilterPublished(posts, "rust"))
}

func TestSortByPublish(t *testing.T) {
	posts := []*models.Post{
		fixture(1, models.StatusPublished, 1),
		fixture(2, models.StatusPublished, 5),
		fixture(3, models.StatusPublished, 5),
	}
	SortByPublish(posts)
	assert.Equal(t, []int{3, 2, 1}, []int{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestPaginate(t *testing.T) {
	posts := []*models.Post{fixture(1, "", 1), fixture(2, "", 1), fixture(3, "", 1), fixture(4, "", 1)}

	tests := []struct {
		name          string
		limit, offset int
		want          int
	}{
		{"first page", 3, 0, 3},
		{"last partial page", 3, 3, 1},
		{"past the end", 3, 9, 0},
		{"negative offset", 2, -1, 2},
		{"no limit", -1, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Paginate(posts, tt.limit, tt.offset), tt.want)
		})
	}
}

func TestRankSimilar(t *testing.T) {
	current := fixture(1, models.StatusPublished, 20, "go", "web", "db")
	candidates := []*models.Post{
		current,
		fixture(2, models.StatusPublished, 1, "go", "web"),
		fixture(3, models.StatusPublished, 9, "go"),
		fixture(4, models.StatusPublished, 5, "web"),
		fixture(5, models.StatusPublished, 8, "db"),
		fixture(6, models.StatusDraft, 10, "go", "web", "db"),
		fixture(7, models.StatusPublished, 7, "rust"),
		fixture(8, models.StatusPublished, 2, "go"),
	}

	t.Run("ordered by shared tags then publish date", func(t *testing.T) {
		got := RankSimilar(current, candidates, 4)
		var ids []int
		for _, p := range got {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []int{2, 3, 5, 4}, ids)
	})

	t.Run("excludes self and drafts", func(t *testing.T) {
		for _, p := range RankSimilar(current, candidates, -1) {
			assert.NotEqual(t, current.ID, p.ID)
			assert.True(t, p.IsPublished())
		}
	})

	t.Run("no shared tags", func(t *testing.T) {
		assert.Empty(t, RankSimilar(fixture(9, models.StatusPublished, 1, "elixir"), candidates, 4))
	})
}

func TestSortComments(t *testing.T) {
	at := func(id, d int) *models.Comment {
		return &models.Comment{ID: id, Created: time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)}
	}
	comments := []*models.Comment{at(3, 2), at(1, 3), at(2, 2)}
	SortComments(comments)
	assert.Equal(t, []int{2, 3, 1}, []int{comments[0].ID, comments[1].ID, comments[2].ID})
}
