package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/knowledgeassistant/internal/api/handlers"
	"github.com/nikhilbhutani/knowledgeassistant/internal/api/middleware"
	"github.com/nikhilbhutani/knowledgeassistant/internal/cache"
	"github.com/nikhilbhutani/knowledgeassistant/internal/chat"
	"github.com/nikhilbhutani/knowledgeassistant/internal/config"
	"github.com/nikhilbhutani/knowledgeassistant/internal/document"
	"github.com/nikhilbhutani/knowledgeassistant/internal/embedding"
	"github.com/nikhilbhutani/knowledgeassistant/internal/llm"
	"github.com/nikhilbhutani/knowledgeassistant/internal/rag"
	"github.com/nikhilbhutani/knowledgeassistant/internal/store"
	"github.com/nikhilbhutani/knowledgeassistant/internal/vectorstore"
	"github.com/nikhilbhutani/knowledgeassistant/pkg/chunker"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() (http.Handler, error) {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.CORS.Origins))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	ch, err := chunker.New(chunker.Options{
		ChunkSize: rt.cfg.Chunking.Size,
		Overlap:   rt.cfg.Chunking.Overlap,
	})
	if err != nil {
		return nil, err
	}

	records := store.NewPostgres(rt.db)
	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.LLM.EmbeddingModel)
	index := vectorstore.NewPgVector(rt.db, embedSvc)

	var c *cache.Cache
	if rt.redis != nil {
		c = cache.NewCache(rt.redis)
	}

	docSvc := document.NewService(records, index, ch, c)
	retriever := rag.NewRetriever(index, rag.DefaultTopK)
	chatSvc := chat.NewService(records, records, retriever, rt.llmGW, rt.cfg.LLM.Model, rt.cfg.LLM.Temperature)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			handlers.WriteStatus(w)
		})

		docH := handlers.NewDocumentHandler(docSvc)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", docH.Upload)
			r.Get("/", docH.List)
			r.Delete("/{id}", docH.Delete)
		})

		convH := handlers.NewConversationHandler(chatSvc)
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", convH.Create)
			r.Get("/", convH.List)
			r.Get("/{id}", convH.Get)
			r.Delete("/{id}", convH.Delete)
			r.Get("/{id}/messages", convH.Messages)
		})

		chatH := handlers.NewChatHandler(chatSvc)
		r.Post("/chat", chatH.Chat)
	})

	return r, nil
}
