package controllers

import (
	"net/http"
	"strings"

	"postapp/app/forms"
	"postapp/app/models"
	"postapp/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	base
	postService  *services.PostService
	shareService *services.ShareService
	baseURL      string
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, shareService *services.ShareService, templates Templates, logger *zap.Logger) *PostController {
	return &PostController{
		base:         newBase(templates, logger),
		postService:  postService,
		shareService: shareService,
	}
}

// SetBaseURL fixes the scheme and host used in shared links. When unset the
// request's own scheme and host are used.
func (pc *PostController) SetBaseURL(baseURL string) {
	pc.baseURL = strings.TrimRight(baseURL, "/")
}

// Index lists published posts, optionally by tag, one page at a time.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	tagSlug := mux.Vars(r)["tag_slug"]

	result, err := pc.postService.ListPublished(tagSlug, r.URL.Query().Get("page"))
	if err != nil {
		pc.lookupError(w, r, err)
		return
	}

	if isAPI(r) {
		pc.sendJSON(w, http.StatusOK, result)
		return
	}
	pc.render(w, r, "list", result)
}

// Show displays a published post with its comments and similar posts.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	year, okY := intVar(r, "year")
	month, okM := intVar(r, "month")
	day, okD := intVar(r, "day")
	if !okY || !okM || !okD {
		pc.notFound(w, r)
		return
	}

	detail, err := pc.postService.PostDetail(year, month, day, mux.Vars(r)["slug"])
	if err != nil {
		pc.lookupError(w, r, err)
		return
	}

	if isAPI(r) {
		pc.sendJSON(w, http.StatusOK, detail)
		return
	}
	pc.render(w, r, "detail", struct {
		*services.PostDetail
		Form *forms.CommentForm
	}{
		PostDetail: detail,
		Form:       forms.NewCommentForm(),
	})
}

type shareData struct {
	Post *models.Post
	Form *forms.EmailPostForm
	Sent bool
}

// Share shows the recommend-by-email form and sends it on POST.
func (pc *PostController) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "post_id")
	if !ok {
		pc.notFound(w, r)
		return
	}
	post, err := pc.postService.GetPublishedByID(id)
	if err != nil {
		pc.lookupError(w, r, err)
		return
	}

	data := shareData{Post: post, Form: forms.NewEmailPostForm()}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			pc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
			return
		}
		data.Form = forms.BindEmailPostForm(r.PostForm)

		data.Sent, err = pc.shareService.SharePost(r.Context(), post, pc.absoluteURL(r, post), data.Form)
		if err != nil {
			pc.serverError(w, r, "Failed to send email", err)
			return
		}
		if data.Sent {
			pc.logger.Info("post shared", zap.Int("post_id", post.ID))
		}
	}

	pc.render(w, r, "share", data)
}

// absoluteURL builds the full link to post.
func (pc *PostController) absoluteURL(r *http.Request, post *models.Post) string {
	if pc.baseURL != "" {
		return pc.baseURL + post.AbsoluteURL()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	switch proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); proto {
	case "http", "https":
		scheme = proto
	}
	return scheme + "://" + r.Host + post.AbsoluteURL()
}
