package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/poliq-ai/poliq/internal/api/handlers"
	"github.com/poliq-ai/poliq/internal/api/middleware"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Dependencies holds the handler dependencies for the router.
type Dependencies struct {
	AskService AskService
	Catalog    handlers.CorpusCatalog
}

// AskService aliases the handler-level interface so callers wire one type.
type AskService = handlers.AskService

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.CORS)
	r.Use(middleware.MaxBodyBytes(maxRequestBody))

	askHandler := handlers.NewAskHandler(deps.AskService)
	corporaHandler := handlers.NewCorporaHandler(deps.Catalog)

	r.Get("/health", handlers.Health)
	r.Get("/", corporaHandler.Root)
	r.Post("/ask", askHandler.Ask)

	return r
}
