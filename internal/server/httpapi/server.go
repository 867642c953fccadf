// Package httpapi exposes the blog and auth services as a JSON API over
// HTTP using the chi router.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/dmitrijs2005/docblog/internal/logging"
	"github.com/dmitrijs2005/docblog/internal/server/config"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/dmitrijs2005/docblog/internal/server/services"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// UserService is the part of services.UserService used by the handlers.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	IssueToken(userID string) (string, error)
	Authenticate(token string) (string, error)
}

// BlogService is the part of services.BlogService used by the handlers.
type BlogService interface {
	Create(ctx context.Context, ownerID string, in services.BlogInput) (*models.Blog, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Blog, error)
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	Update(ctx context.Context, id, ownerID string, patch models.BlogPatch) (*models.Blog, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// Pinger reports store health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP front of the application.
type Server struct {
	address        string
	production     bool
	cookieValidity time.Duration
	users          UserService
	blogs          BlogService
	health         Pinger
	logger         logging.Logger
	handler        http.Handler
}

// NewServer wires the router. The CORS policy and rate limits are taken
// from cfg once and never change afterwards.
func NewServer(cfg *config.Config, users UserService, blogs BlogService, health Pinger, logger logging.Logger) *Server {
	s := &Server{
		address:        cfg.HTTPAddr,
		production:     cfg.Production,
		cookieValidity: cfg.CookieValidity(),
		users:          users,
		blogs:          blogs,
		health:         health,
		logger:         logger.With("module", "http_server"),
	}
	s.handler = s.routes(cfg)
	return s
}

// Handler returns the root handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes(cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// Rate limits key on RemoteAddr, so forwarded headers are honoured only
	// when a trusted proxy sets them.
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(cors.Handler(corsOptions(cfg.CORSOrigins, cfg.CORSParentDomain)))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(s.rateLimit(cfg.RateLimitPerMinute))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeKind(w, http.StatusNotFound, KindNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeKind(w, http.StatusMethodNotAllowed, KindMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", s.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.AuthRateLimitPerMinute > 0 {
					r.Use(s.rateLimit(cfg.AuthRateLimitPerMinute))
				}
				r.Post("/register", s.register)
				r.Post("/login", s.login)
			})
			r.With(s.requireAuth).Get("/me", s.me)
			r.Get("/logout", s.logout)
			r.Post("/logout", s.logout)
		})

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", s.listBlogs)
			r.Get("/{id}", s.getBlog)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.createBlog)
				r.Put("/{id}", s.updateBlog)
				r.Delete("/{id}", s.deleteBlog)
			})
		})
	})

	return r
}

func (s *Server) rateLimit(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.writeKind(w, http.StatusTooManyRequests, KindRateLimited, "Too many requests, please try again later")
		}),
	)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		s.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
