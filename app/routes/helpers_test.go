package routes

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"postapp/app/mail"
	"postapp/app/models"
	"postapp/app/repositories"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

var publishDay = time.Date(2024, time.May, 4, 8, 30, 0, 0, time.UTC)

type testEnv struct {
	router *mux.Router
	store  *repositories.Store
	outbox *mail.Outbox
}

func setupTestStatic(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "blog.css"), []byte("body { background: #f0f0f0; }"), 0644))
	return dir
}

func setupTestStore(t *testing.T) *repositories.Store {
	store, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func setupTestEnv(t *testing.T, store *repositories.Store) *testEnv {
	outbox := mail.NewOutbox()
	router, err := SetupRoutes(Options{
		Store:     store,
		Sender:    outbox,
		StaticDir: setupTestStatic(t),
		BaseURL:   "https://blog.example.com",
		MailFrom:  "noreply@blog.example.com",
		PageSize:  3,
	})
	require.NoError(t, err)
	return &testEnv{router: router, store: store, outbox: outbox}
}

// setupTestData stores five published posts and one draft. The newest
// published post is "fifth", tagged go and web.
func setupTestData(t *testing.T, store *repositories.Store) []*models.Post {
	specs := []struct {
		slug   string
		status models.Status
		tags   []string
	}{
		{"first", models.StatusPublished, []string{"go"}},
		{"second", models.StatusPublished, []string{"web"}},
		{"third", models.StatusPublished, []string{"go", "web"}},
		{"fourth", models.StatusPublished, []string{"rust"}},
		{"fifth", models.StatusPublished, []string{"go", "web"}},
		{"draft", models.StatusDraft, []string{"go"}},
	}

	var posts []*models.Post
	for i, s := range specs {
		for _, tag := range s.tags {
			require.NoError(t, store.Tags.Create(models.NewTag(tag)))
		}
		post := &models.Post{
			Title:   "Post " + s.slug,
			Slug:    s.slug,
			Body:    "Body of the " + s.slug + " post",
			Publish: publishDay.AddDate(0, 0, i),
			Status:  s.status,
			Tags:    s.tags,
		}
		post.BeforeCreate()
		require.NoError(t, store.Posts.Create(post))
		posts = append(posts, post)
	}
	return posts
}

func (e *testEnv) request(method, target string, form url.Values, accept string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.request(http.MethodGet, target, nil, "")
}
