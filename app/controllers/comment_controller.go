package controllers

import (
	"net/http"

	"postapp/app/forms"
	"postapp/app/models"
	"postapp/app/services"

	"go.uber.org/zap"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	base
	postService    *services.PostService
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(postService *services.PostService, commentService *services.CommentService, templates Templates, logger *zap.Logger) *CommentController {
	return &CommentController{
		base:           newBase(templates, logger),
		postService:    postService,
		commentService: commentService,
	}
}

type commentData struct {
	Post    *models.Post       `json:"-"`
	Form    *forms.CommentForm `json:"-"`
	Comment *models.Comment    `json:"comment"`
	Errors  forms.FieldErrors  `json:"errors,omitempty"`
}

// Create stores a comment on a published post. The response always shows the
// outcome: the saved comment, or the form with its errors.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "post_id")
	if !ok {
		cc.notFound(w, r)
		return
	}
	post, err := cc.postService.GetPublishedByID(id)
	if err != nil {
		cc.lookupError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		cc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
		return
	}
	data := commentData{Post: post, Form: forms.BindCommentForm(r.PostForm)}

	data.Comment, err = cc.commentService.AddComment(post, data.Form)
	if err != nil {
		cc.serverError(w, r, "Failed to create comment", err)
		return
	}
	data.Errors = data.Form.Errors

	if isAPI(r) {
		status := http.StatusCreated
		if data.Comment == nil {
			status = http.StatusBadRequest
		}
		cc.sendJSON(w, status, data)
		return
	}
	cc.render(w, r, "comment", data)
}
