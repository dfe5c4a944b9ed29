// Package httpapi exposes the HTTP/JSON API consumed by the web client and
// the CLI.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/bdaybook/internal/media"
	"github.com/and161185/bdaybook/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth      service.AuthService
	people    service.PersonService
	assets    media.Opener // optional; nil disables GET /api/media
	signKey   []byte
	log       *zap.Logger
	maxUpload int64 // photo cap; bounds the whole multipart body at ingest
}

// New constructs the HTTP server with injected services. maxUpload caps the
// photo part of create/update requests; zero applies the service default.
func New(auth service.AuthService, people service.PersonService, assets media.Opener, signKey []byte, log *zap.Logger, maxUpload int64) *Server {
	if maxUpload <= 0 {
		maxUpload = service.DefaultMaxPhotoSize
	}
	return &Server{auth: auth, people: people, assets: assets, signKey: signKey, log: log, maxUpload: maxUpload}
}

// Routes builds the router with middleware and all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log), RequestLogger(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Route("/api/birthdays", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Post("/", s.handleCreate)
			r.Get("/upcoming", s.handleRanked)
			r.Get("/{id}", s.handleGet)
			r.Put("/{id}", s.handleUpdate)
			r.Delete("/{id}", s.handleDelete)
		})
		if s.assets != nil {
			r.Get("/api/media/{ref}", s.handleMedia)
		}
	})
	return r
}
