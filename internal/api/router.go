package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rootedlabs/trellis/internal/embedding"
	"github.com/rootedlabs/trellis/internal/engine"
	"github.com/rootedlabs/trellis/internal/semantic"
	"github.com/rootedlabs/trellis/internal/store"
	"github.com/rootedlabs/trellis/internal/vectorstore"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	db *store.DB,
	roots *store.RootStore,
	nodes *store.NodeStore,
	eng *engine.Engine,
	analyzer *semantic.Analyzer,
	responder *semantic.Responder,
	ollama *embedding.OllamaClient,
	qdrant *vectorstore.QdrantClient,
	metricsHandler http.Handler,
	apiKey string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	// Handlers
	healthH := NewHealthHandler(db, ollama, qdrant)
	chatH := NewChatHandler(eng, analyzer, responder)
	memoryH := NewMemoryHandler(eng, roots, nodes)

	// Unauthenticated routes
	r.Get("/health", healthH.Health)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))
		r.Use(UserExtractor)

		r.Post("/chat", chatH.Chat)
		r.Get("/profile", memoryH.Profile)

		r.Route("/memory", func(r chi.Router) {
			r.Post("/process", memoryH.Process)
			r.Post("/retrieve", memoryH.Retrieve)
			r.Post("/decay", memoryH.Decay)
			r.Get("/stats", memoryH.Stats)
		})
	})

	return r
}
