package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostValidation(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		post    *Post
		wantErr bool
	}{
		{
			name: "valid post",
			post: &Post{
				Title:   "Valid Title",
				Slug:    "valid-title",
				Body:    "Body text",
				Publish: now,
				Created: now,
				Status:  StatusPublished,
				Tags:    []string{"go", "web"},
			},
			wantErr: false,
		},
		{
			name: "missing title",
			post: &Post{
				Slug:    "valid-title",
				Body:    "Body text",
				Publish: now,
				Created: now,
				Status:  StatusDraft,
			},
			wantErr: true,
		},
		{
			name: "slug with spaces",
			post: &Post{
				Title:   "Valid Title",
				Slug:    "not a slug",
				Body:    "Body text",
				Publish: now,
				Created: now,
				Status:  StatusDraft,
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			post: &Post{
				Title:   "Valid Title",
				Slug:    "valid-title",
				Body:    "Body text",
				Publish: now,
				Created: now,
				Status:  "XX",
			},
			wantErr: true,
		},
		{
			name: "bad tag slug",
			post: &Post{
				Title:   "Valid Title",
				Slug:    "valid-title",
				Body:    "Body text",
				Publish: now,
				Created: now,
				Status:  StatusDraft,
				Tags:    []string{"bad tag"},
			},
			wantErr: true,
		},
		{
			name: "zero creation time",
			post: &Post{
				Title:   "Valid Title",
				Slug:    "valid-title",
				Body:    "Body text",
				Publish: now,
				Status:  StatusDraft,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{
		Title: "Test Post",
		Slug:  "test-post",
		Body:  "Test Content",
	}

	assert.True(t, post.Created.IsZero())
	post.BeforeCreate()
	assert.False(t, post.Created.IsZero())
	assert.False(t, post.Publish.IsZero())
	assert.Equal(t, StatusDraft, post.Status)
	assert.Equal(t, time.UTC, post.Publish.Location())
}

func TestPostAbsoluteURL(t *testing.T) {
	post := &Post{
		Slug:    "hello-world",
		Publish: time.Date(2024, time.March, 7, 23, 30, 0, 0, time.UTC),
	}

	assert.Equal(t, "/blog/2024/3/7/hello-world/", post.AbsoluteURL())
	assert.True(t, post.PublishedOn(2024, 3, 7))
	assert.False(t, post.PublishedOn(2024, 3, 8))
}

func TestPostSharedTags(t *testing.T) {
	post := &Post{Tags: []string{"go", "web", "testing"}}

	assert.Equal(t, 2, post.SharedTags(&Post{Tags: []string{"go", "testing", "rust"}}))
	assert.Equal(t, 0, post.SharedTags(&Post{Tags: []string{"rust"}}))
	assert.Equal(t, 0, post.SharedTags(&Post{}))
	assert.True(t, post.HasTag("web"))
	assert.False(t, post.HasTag("rust"))
}
