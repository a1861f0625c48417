package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/auth"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/handlers"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/ingest"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/rag"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Logger         *slog.Logger
	Users          storage.UserStore
	Documents      storage.DocumentStore
	Chunks         storage.ChunkStore
	Vectors        vectorstore.VectorStore
	Orchestrator   *ingest.Orchestrator
	Engine         rag.Engine
	Tokens         *auth.Service
	HealthChecks   map[string]handlers.HealthCheck
	Collection     string
	MaxUploadBytes int64
}

// NewRouter builds the API router: open auth and health routes, everything
// else behind bearer authentication.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(deps.Logger))
	r.Use(CORS)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	docsHandler := handlers.NewDocumentsHandler(deps.Documents, deps.Chunks, deps.Vectors, deps.Orchestrator, deps.Collection, deps.MaxUploadBytes)
	askHandler := handlers.NewAskHandler(deps.Engine, deps.Documents)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)

	r.Method(http.MethodGet, "/health", healthHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(deps.Tokens))
			r.Get("/me", authHandler.Me)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Tokens))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", docsHandler.Upload)
			r.Get("/", docsHandler.List)
			r.Get("/{id}", docsHandler.Get)
			r.Delete("/{id}", docsHandler.Delete)
		})

		r.Method(http.MethodPost, "/ask", askHandler)
	})

	return r
}
