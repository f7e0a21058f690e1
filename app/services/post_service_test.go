package services

import (
	"fmt"
	"testing"
	"time"

	"postapp/app/models"
	"postapp/app/repositories"
	"postapp/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices() (*repositories.Store, *PostService, *CommentService) {
	store := mock.NewStore()
	return store,
		NewPostService(store.Posts, store.Comments, store.Tags),
		NewCommentService(store.Comments, store.Posts)
}

func publishedPost(t *testing.T, service *PostService, slug string, publish time.Time, tags ...string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:   "Post " + slug,
		Slug:    slug,
		Body:    "Body of " + slug,
		Publish: publish,
		Status:  models.StatusPublished,
		Tags:    tags,
	}
	require.NoError(t, service.CreatePost(post))
	return post
}

func TestPostService(t *testing.T) {
	store, service, _ := newServices()

	t.Run("create post", func(t *testing.T) {
		post := &models.Post{
			Title: "Test Post",
			Slug:  "test-post",
			Body:  "This is a test post body",
			Tags:  []string{"go"},
		}

		err := service.CreatePost(post)
		assert.NoError(t, err)
		assert.Equal(t, 1, post.ID)
		assert.False(t, post.Created.IsZero())
		assert.Equal(t, models.StatusDraft, post.Status)

		tag, err := store.Tags.GetBySlug("go")
		assert.NoError(t, err)
		assert.Equal(t, "go", tag.Name)
	})

	t.Run("create invalid post", func(t *testing.T) {
		err := service.CreatePost(&models.Post{Title: "No slug", Body: "x"})
		assert.Error(t, err)

		err = service.CreatePost(&models.Post{Title: "Bad tag", Slug: "bad-tag", Body: "x", Tags: []string{"!!!"}})
		assert.Error(t, err)
	})

	t.Run("tag names become slugs", func(t *testing.T) {
		post := &models.Post{
			Title: "Tagged",
			Slug:  "tagged",
			Body:  "x",
			Tags:  []string{"Web Development", "web development", "Go"},
		}
		require.NoError(t, service.CreatePost(post))
		assert.Equal(t, []string{"web-development", "go"}, post.Tags)

		tag, err := store.Tags.GetBySlug("web-development")
		require.NoError(t, err)
		assert.Equal(t, "Web Development", tag.Name)
		require.NoError(t, service.DeletePost(post.ID))
	})

	t.Run("get post", func(t *testing.T) {
		post, err := service.GetPost(1)
		assert.NoError(t, err)
		assert.Equal(t, "Test Post", post.Title)
		assert.NotNil(t, post.Comments)
	})

	t.Run("update post", func(t *testing.T) {
		existing, err := service.GetPost(1)
		require.NoError(t, err)

		post := &models.Post{
			ID:     1,
			Title:  "Updated Title",
			Slug:   "test-post",
			Body:   "Updated body",
			Status: models.StatusPublished,
		}
		err = service.UpdatePost(post)
		assert.NoError(t, err)
		assert.Equal(t, existing.Created, post.Created)
		assert.Equal(t, existing.Publish, post.Publish)

		updated, err := service.GetPublishedByID(1)
		assert.NoError(t, err)
		assert.Equal(t, "Updated Title", updated.Title)
	})

	t.Run("set status", func(t *testing.T) {
		post, err := service.SetStatus(1, models.StatusDraft)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, post.Status)
		_, err = service.GetPublishedByID(1)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		_, err = service.SetStatus(1, models.StatusPublished)
		require.NoError(t, err)
		_, err = service.GetPublishedByID(1)
		assert.NoError(t, err)

		_, err = service.SetStatus(999, models.StatusPublished)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("update missing post", func(t *testing.T) {
		err := service.UpdatePost(&models.Post{ID: 999, Title: "x", Slug: "x", Body: "x"})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("delete post", func(t *testing.T) {
		post := &models.Post{Title: "Post to Delete", Slug: "delete-me", Body: "This post will be deleted"}
		require.NoError(t, service.CreatePost(post))

		comment := &models.Comment{PostID: post.ID, Name: "Ann", Email: "ann@example.com", Body: "Bye"}
		require.NoError(t, store.Comments.Create(comment))

		err := service.DeletePost(post.ID)
		assert.NoError(t, err)

		_, err = service.GetPost(post.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		comments, err := store.Comments.ListByPost(post.ID)
		assert.NoError(t, err)
		assert.Empty(t, comments)
	})
}

func TestListPublished(t *testing.T) {
	_, service, _ := newServices()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		tags := []string{"all"}
		if i%2 == 0 {
			tags = append(tags, "even")
		}
		publishedPost(t, service, fmt.Sprintf("post-%d", i), base.AddDate(0, 0, i), tags...)
	}
	require.NoError(t, service.CreatePost(&models.Post{Title: "Draft", Slug: "draft", Body: "x", Tags: []string{"even"}}))

	tests := []struct {
		name      string
		tag       string
		page      string
		number    int
		numPages  int
		wantSlugs []string
	}{
		{"first page", "", "", 1, 3, []string{"post-7", "post-6", "post-5"}},
		{"second page", "", "2", 2, 3, []string{"post-4", "post-3", "post-2"}},
		{"last page", "", "3", 3, 3, []string{"post-1"}},
		{"not an integer", "", "abc", 1, 3, []string{"post-7", "post-6", "post-5"}},
		{"beyond the end", "", "99", 3, 3, []string{"post-1"}},
		{"below one", "", "0", 3, 3, []string{"post-1"}},
		{"by tag", "even", "1", 1, 1, []string{"post-6", "post-4", "post-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.ListPublished(tt.tag, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.number, result.Page.Number)
			assert.Equal(t, tt.numPages, result.Page.NumPages)

			var slugs []string
			for _, p := range result.Posts {
				slugs = append(slugs, p.Slug)
			}
			assert.Equal(t, tt.wantSlugs, slugs)
			if tt.tag != "" {
				require.NotNil(t, result.Tag)
				assert.Equal(t, tt.tag, result.Tag.Slug)
			}
		})
	}

	t.Run("unknown tag", func(t *testing.T) {
		_, err := service.ListPublished("nope", "")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("page size", func(t *testing.T) {
		service.SetPageSize(5)
		defer service.SetPageSize(DefaultPageSize)

		result, err := service.ListPublished("", "")
		require.NoError(t, err)
		assert.Len(t, result.Posts, 5)
		assert.Equal(t, 2, result.Page.NumPages)
	})
}

func TestListPublishedEmpty(t *testing.T) {
	_, service, _ := newServices()

	result, err := service.ListPublished("", "5")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page.Number)
	assert.Equal(t, 1, result.Page.NumPages)
	assert.Empty(t, result.Posts)
}

func TestPostDetail(t *testing.T) {
	store, service, comments := newServices()
	publish := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	post := publishedPost(t, service, "hello", publish, "go", "web")
	for i, slug := range []string{"a", "b", "c", "d", "e"} {
		publishedPost(t, service, slug, publish.AddDate(0, 0, -i-1), "go")
	}
	both := publishedPost(t, service, "both", publish.AddDate(0, -1, 0), "go", "web")
	publishedPost(t, service, "unrelated", publish, "rust")

	form := newCommentForm("Ann", "ann@example.com", "First!")
	_, err := comments.AddComment(post, form)
	require.NoError(t, err)
	hidden := &models.Comment{PostID: post.ID, Name: "Bob", Email: "bob@example.com", Body: "spam", Created: publish}
	require.NoError(t, store.Comments.Create(hidden))

	t.Run("found", func(t *testing.T) {
		detail, err := service.PostDetail(2024, 3, 15, "hello")
		require.NoError(t, err)
		assert.Equal(t, post.ID, detail.Post.ID)

		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "Ann", detail.Comments[0].Name)

		require.Len(t, detail.Similar, DefaultSimilarLimit)
		assert.Equal(t, both.ID, detail.Similar[0].ID)
		for _, p := range detail.Similar {
			assert.NotEqual(t, post.ID, p.ID)
		}
		assert.Equal(t, "a", detail.Similar[1].Slug)
	})

	t.Run("wrong date", func(t *testing.T) {
		_, err := service.PostDetail(2024, 3, 16, "hello")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("draft", func(t *testing.T) {
		draft := &models.Post{Title: "Draft", Slug: "draft", Body: "x", Publish: publish}
		require.NoError(t, service.CreatePost(draft))

		_, err := service.PostDetail(2024, 3, 15, "draft")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
