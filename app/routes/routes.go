package routes

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"postapp/app/controllers"
	"postapp/app/mail"
	"postapp/app/middleware"
	"postapp/app/repositories"
	"postapp/app/services"
	"postapp/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Options wires the application together.
type Options struct {
	Store  *repositories.Store
	Sender mail.Sender
	Logger *zap.Logger

	// Templates overrides the embedded views when set.
	Templates fs.FS
	// StaticDir is served under /static/ when set.
	StaticDir string

	BaseURL      string
	MailFrom     string
	PageSize     int
	SimilarLimit int
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(opts Options) (*mux.Router, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	templateFS := opts.Templates
	if templateFS == nil {
		templateFS = views.FS
	}
	templates, err := controllers.LoadTemplates(templateFS)
	if err != nil {
		return nil, err
	}

	postService := services.NewPostService(opts.Store.Posts, opts.Store.Comments, opts.Store.Tags)
	postService.SetPageSize(opts.PageSize)
	if opts.SimilarLimit > 0 {
		postService.SetSimilarLimit(opts.SimilarLimit)
	}
	commentService := services.NewCommentService(opts.Store.Comments, opts.Store.Posts)
	shareService := services.NewShareService(opts.Sender, opts.MailFrom)

	postController := controllers.NewPostController(postService, shareService, templates, logger)
	postController.SetBaseURL(opts.BaseURL)
	commentController := controllers.NewCommentController(postService, commentService, templates, logger)

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.SecureHeaders)

	if opts.StaticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	router.HandleFunc("/healthz", health(opts.Store)).Methods("GET")
	router.Handle("/", http.RedirectHandler("/blog/", http.StatusFound)).Methods("GET")

	// Web routes
	blog := router.PathPrefix("/blog").Subrouter()
	blog.HandleFunc("/", postController.Index).Methods("GET")
	blog.HandleFunc("/tag/{tag_slug}/", postController.Index).Methods("GET")
	blog.HandleFunc("/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/{slug}/", postController.Show).Methods("GET")
	blog.HandleFunc("/{post_id:[0-9]+}/share/", postController.Share).Methods("GET", "POST")
	blog.HandleFunc("/{post_id:[0-9]+}/comment/", commentController.Create).Methods("POST")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	apiPosts := api.PathPrefix("/posts").Subrouter()
	apiPosts.HandleFunc("", postController.Index).Methods("GET")
	apiPosts.HandleFunc("/tag/{tag_slug}", postController.Index).Methods("GET")
	apiPosts.HandleFunc("/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/{slug}", postController.Show).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = methodNotAllowed(router)
	return router, nil
}

var routeMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// methodNotAllowed answers 405 with an Allow header listing the methods
// the matched path does accept.
func methodNotAllowed(router *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range routeMethods {
			try := r.Clone(r.Context())
			try.Method = method
			var match mux.RouteMatch
			if router.Match(try, &match) && match.MatchErr == nil {
				allowed = append(allowed, method)
			}
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))

		if strings.HasPrefix(r.URL.Path, "/api") || strings.Contains(r.Header.Get("Accept"), "application/json") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte(`{"error":"Method not allowed"}` + "\n"))
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found"}` + "\n"))
		return
	}
	http.NotFound(w, r)
}

func health(store *repositories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}` + "\n"))
			return
		}
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	}
}

// StartServer serves handler on addr until ctx is cancelled, then shuts down
// gracefully, waiting at most shutdownTimeout for in-flight requests.
func StartServer(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, handler, shutdownTimeout)
}

// Serve is StartServer on an existing listener.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
