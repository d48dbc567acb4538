// Package httpapi exposes the application over HTTP and websockets.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/fireworld/fireworld/internal/app"
	"github.com/fireworld/fireworld/internal/app/metrics"
	"github.com/fireworld/fireworld/pkg/logger"
)

// Options configures the HTTP server behaviour.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerSec int
	RateLimitBurst  int
}

// Server routes HTTP requests to the application services.
type Server struct {
	app            *app.Application
	log            *logger.Logger
	allowedOrigins []string
	limiter        *rateLimiter
	upgrader       websocket.Upgrader
	router         *mux.Router
}

// NewServer builds the router with all API routes registered.
func NewServer(application *app.Application, opts Options, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	s := &Server{
		app:            application,
		log:            log,
		allowedOrigins: opts.AllowedOrigins,
		limiter:        newRateLimiter(opts.RateLimitPerSec, opts.RateLimitBurst),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.rateLimitMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Registration and login do not carry a token yet.
	api.HandleFunc("/auth", s.handleRegister).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth", s.handleLogin).Methods(http.MethodPut)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/auth", s.handleVerify).Methods(http.MethodGet)

	authed.HandleFunc("/posts", s.handleCreatePost).Methods(http.MethodPost)
	authed.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	authed.HandleFunc("/posts/{postID}", s.handleDeletePost).Methods(http.MethodDelete)

	authed.HandleFunc("/activity", s.handleCreateActivity).Methods(http.MethodPost)
	authed.HandleFunc("/activity", s.handleListActivity).Methods(http.MethodGet)
	authed.HandleFunc("/activity/{activityID}", s.handleDeleteActivity).Methods(http.MethodDelete)

	authed.HandleFunc("/messages", s.handleSendMessage).Methods(http.MethodPost)
	authed.HandleFunc("/messages", s.handleConversation).Methods(http.MethodGet)
	authed.HandleFunc("/messages/stream", s.handleMessageStream).Methods(http.MethodGet)

	authed.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	authed.HandleFunc("/news", s.handleNews).Methods(http.MethodGet)
	authed.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// routePattern returns the mux route template for metric labels so paths
// with IDs collapse into one series.
func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
