package main

import (
	"context"

	"github.com/buker/posts-api/docs"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/penglongli/gin-metrics/ginmetrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Posts API
// @description Validated, authorized CRUD for the posts collection
// @version 1.0

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// newRouter assembles the API engine: compression, forced-fault injection,
// login, and the posts routes behind the validation pipeline.
func newRouter(cfg Config, store Store, issuer TokenIssuer) *gin.Engine {
	app := gin.Default()
	app.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.SentryDSN != "" {
		app.Use(sentrygin.New(sentrygin.Options{
			Repanic: true,
		}))
	}
	app.Use(forcedFault())

	app.POST("/login", handleLogin(issuer))

	p := newPipeline(cfg, store, issuer)
	posts := app.Group("/posts")
	posts.Use(p.middleware())
	{
		posts.GET("", handleListPosts(store))
		posts.GET("/:id", handleGetPost(store))
		posts.POST("", handleCreatePost(store))
		posts.PUT("/:id", handleUpdatePost(store))
		posts.PATCH("/:id", handlePatchPost(store))
		posts.DELETE("/:id", handleDeletePost(store))
	}

	app.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	return app
}

func newStore(cfg Config) (Store, error) {
	if cfg.StoreBackend == "memory" {
		log.Info("Using in-memory store")
		return NewMemoryStore(), nil
	}
	return NewMongoStore(context.Background(), cfg)
}

func newIssuer(cfg Config) TokenIssuer {
	if cfg.AuthPolicy == policyOpaque {
		log.Info("Using opaque token policy")
		return NewOpaqueIssuer()
	}
	log.Info("Using signed token policy")
	return NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
}

func main() {
	cfg := loadConfig()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Fatalf("Sentry initialization failed: %v", err)
		}
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("store initialization failed: %v", err)
	}

	docs.SwaggerInfo.Title = "Posts API"
	docs.SwaggerInfo.Description = "Validated, authorized CRUD for the posts collection"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	app := newRouter(cfg, store, newIssuer(cfg))

	metricRouter := gin.Default()
	metrics := ginmetrics.GetMonitor()
	metrics.SetMetricPath("/metrics")
	metrics.SetSlowTime(10)
	// used to p95, p99
	metrics.SetDuration([]float64{0.1, 0.3, 1.2, 5, 10})
	metrics.UseWithoutExposingEndpoint(app)
	metrics.Expose(metricRouter)
	metricRouter.GET("/metrics/pipeline", gin.WrapH(promhttp.Handler()))
	metricRouter.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Infof("Starting server on port %s (profile %s)", cfg.Port, cfg.Profile)
	go func() {
		_ = metricRouter.Run(":" + cfg.MetricsPort)
	}()
	_ = app.Run(":" + cfg.Port)
}
