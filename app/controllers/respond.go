package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"postapp/app/repositories"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// base carries what every controller needs to answer a request.
type base struct {
	templates Templates
	logger    *zap.Logger
}

func newBase(templates Templates, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{templates: templates, logger: logger}
}

// isAPI reports whether the client asked for JSON.
func isAPI(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") || strings.HasPrefix(r.URL.Path, "/api")
}

func (b *base) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	if err := b.templates.Render(w, http.StatusOK, page, data); err != nil {
		b.serverError(w, r, "Template error", err)
	}
}

func (b *base) sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Warn("encode response", zap.Error(err))
	}
}

func (b *base) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if isAPI(r) {
		b.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}

func (b *base) notFound(w http.ResponseWriter, r *http.Request) {
	b.sendError(w, r, "Not found", http.StatusNotFound)
}

func (b *base) serverError(w http.ResponseWriter, r *http.Request, message string, err error) {
	b.logger.Error(message,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	b.sendError(w, r, message, http.StatusInternalServerError)
}

// lookupError answers with 404 for missing records and 500 otherwise.
func (b *base) lookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		b.notFound(w, r)
		return
	}
	b.serverError(w, r, "Failed to load post", err)
}

// intVar reads a numeric route variable.
func intVar(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	return n, err == nil
}
