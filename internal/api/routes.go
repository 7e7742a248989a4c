// Route registration and go-chi router setup: public routes (/health,
// /auth/*) and JWT-protected kiosk routes (/api/v1/*).
package api

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rafaelgorayb/barduino/internal/api/handlers"
	apmiddleware "github.com/rafaelgorayb/barduino/internal/api/middleware"
	domainauth "github.com/rafaelgorayb/barduino/internal/domain/auth"
	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
	"github.com/rafaelgorayb/barduino/internal/domain/recommend"
	"github.com/rafaelgorayb/barduino/internal/infra/config"
	"github.com/rafaelgorayb/barduino/internal/infra/eventbus"
	"github.com/rafaelgorayb/barduino/internal/infra/llm"
)

// NewRouter creates and configures a chi router with all routes.
func NewRouter(db *sql.DB) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Device auth endpoints — public, no JWT required.
	authHandler := handlers.NewAuthHandler(domainauth.NewService(db))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)

		cfg := config.Load()
		bus := eventbus.New()
		provider := buildProvider(cfg)

		store := catalog.NewStore(db)
		if err := store.Load(context.Background()); err != nil {
			log.Printf("api: initial catalog load failed: %v", err)
		}

		history := recommend.NewHistoryStore(db)
		orchestrator := recommend.NewOrchestrator(store, provider, bus, history, cfg.TopK)
		reindexer := catalog.NewReindexer(db, store, provider, bus)

		catalogHandler := handlers.NewCatalogHandler(store)
		r.Route("/drinks", func(r chi.Router) {
			r.Get("/", catalogHandler.ListDrinks) // GET /api/v1/drinks
			r.Get("/{id}", catalogHandler.GetDrink)
		})

		recHandler := handlers.NewRecommendationHandler(orchestrator)
		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", recHandler.Request) // POST /api/v1/recommendations
			r.Get("/current", recHandler.Current)
			r.Delete("/current", recHandler.Reset)
		})

		reindexHandler := handlers.NewReindexHandler(reindexer)
		r.Post("/catalog/reindex", reindexHandler.Reindex)

		historyHandler := handlers.NewHistoryHandler(history)
		r.Get("/history", historyHandler.ListHistory)
	})

	return r
}

// buildProvider resolves the configured LLM provider through the provider
// router. An unknown LLM_PROVIDER value falls back to OpenAI so a typo
// degrades instead of taking the server down.
func buildProvider(cfg config.Config) llm.Provider {
	openai := llm.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIEmbedModel, cfg.OpenAIChatModel)
	router := llm.NewRouter(map[string]llm.Provider{
		"openai": openai,
		"ollama": llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaEmbedModel, cfg.OllamaChatModel),
	}, cfg.LLMProvider)

	provider, err := router.Route(context.Background())
	if err != nil {
		log.Printf("api: unknown LLM provider %q, falling back to openai", cfg.LLMProvider)
		return openai
	}
	return provider
}
