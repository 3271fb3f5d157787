package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/seido-lab/asclepius/pkg/usecase"
	"github.com/seido-lab/asclepius/pkg/utils/logging"
)

// DefaultMaxUploadSize is the upload byte cap enforced by the upload layer
const DefaultMaxUploadSize = 5_000_000

type Server struct {
	router          *chi.Mux
	uc              *usecase.UseCases
	maxUploadSize   int64
	explicitCheck   bool
	enableHistories bool
}

type Options func(*Server)

// WithMaxUploadSize caps the accepted request body size in bytes
func WithMaxUploadSize(size int64) Options {
	return func(s *Server) {
		s.maxUploadSize = size
	}
}

// WithExplicitSizeCheck enables the pre-inference file size validation:
// the declared file size decides the 413 and the request body cap is
// relaxed to the default so multipart framing does not count against the
// configured limit.
func WithExplicitSizeCheck(enabled bool) Options {
	return func(s *Server) {
		s.explicitCheck = enabled
	}
}

// WithHistories toggles the GET /predict/histories endpoint
func WithHistories(enabled bool) Options {
	return func(s *Server) {
		s.enableHistories = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:          r,
		uc:              uc,
		maxUploadSize:   DefaultMaxUploadSize,
		enableHistories: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", healthHandler)

	r.Route("/predict", func(r chi.Router) {
		r.Post("/", s.handlePredict)
		if s.enableHistories {
			r.Get("/histories", s.handleHistories)
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "healthy"})
}
