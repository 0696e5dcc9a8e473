// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"deckgen-ai-api/internal/application/deck"
	"deckgen-ai-api/internal/config"
	"deckgen-ai-api/internal/infrastructure/imagegen"
	"deckgen-ai-api/internal/infrastructure/llm"
	"deckgen-ai-api/internal/infrastructure/persistence/memory"
	"deckgen-ai-api/internal/interfaces/http/handler"
	"deckgen-ai-api/internal/interfaces/http/middleware"
	"deckgen-ai-api/internal/interfaces/http/router"
	wfchain "deckgen-ai-api/internal/workflow/chain"
	"deckgen-ai-api/pkg/logger"
)

// App 应用依赖容器
type App struct {
	Router *router.Router

	Factory    *llm.EinoFactory
	Store      *memory.PresentationStore
	Generator  *deck.Generator
	Editor     *deck.Editor
	Diagrammer *deck.Diagrammer
	Renderer   *deck.Renderer
	ImageGen   imagegen.Generator
}

// InitializeApp 手工装配整个应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	factory := llm.NewEinoFactory(cfg)
	sem := deck.NewLLMSemaphore(cfg)

	generator := deck.NewGenerator(cfg, wfchain.NewDeckOutlineChain(factory), sem)
	editor := deck.NewEditor(cfg, wfchain.NewSlideEditChain(factory), sem)
	diagrammer := deck.NewDiagrammer(cfg, wfchain.NewDiagramChain(factory), sem)
	renderer := deck.NewRenderer(cfg)

	store := memory.NewPresentationStore(cfg.Store.MaxPresentations)

	var imageGen imagegen.Generator
	if cfg.ImageGen.Enabled {
		client, err := imagegen.NewClient(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init imagegen client: %w", err)
		}
		imageGen = client
	}

	rateLimit, redisCleanup := buildRateLimit(ctx, cfg)

	handlers := router.Handlers{
		Health:       handler.NewHealthHandler(factory, store, cfg.App.Version),
		Presentation: handler.NewPresentationHandler(generator, editor, renderer, store),
		Diagram:      handler.NewDiagramHandler(diagrammer),
		Image:        handler.NewImageHandler(imageGen, renderer, store),
	}

	r := router.New(cfg, handlers, rateLimit)

	app := &App{
		Router:     r,
		Factory:    factory,
		Store:      store,
		Generator:  generator,
		Editor:     editor,
		Diagrammer: diagrammer,
		Renderer:   renderer,
		ImageGen:   imageGen,
	}

	cleanup := func() {
		if redisCleanup != nil {
			redisCleanup()
		}
	}
	return app, cleanup, nil
}

// buildRateLimit 按配置构建限流中间件；限流未启用时返回 nil。
func buildRateLimit(ctx context.Context, cfg *config.Config) (gin.HandlerFunc, func()) {
	if !cfg.Security.RateLimit.Enabled {
		return nil, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		Password:     cfg.Cache.Redis.Password,
		DB:           cfg.Cache.Redis.DB,
		PoolSize:     cfg.Cache.Redis.PoolSize,
		MinIdleConns: cfg.Cache.Redis.MinIdleConns,
		DialTimeout:  cfg.Cache.Redis.DialTimeout,
		ReadTimeout:  cfg.Cache.Redis.ReadTimeout,
		WriteTimeout: cfg.Cache.Redis.WriteTimeout,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Redis 不可达时限流退化为放行，不阻塞启动。
		logger.Warn(ctx, "redis unreachable, rate limiting disabled", "error", err.Error())
	}

	mw := middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             cfg.Security.RateLimit.Burst,
		KeyPrefix:         "deckgen:ratelimit",
	}, redisClient)

	cleanup := func() {
		_ = redisClient.Close()
	}
	return mw, cleanup
}
