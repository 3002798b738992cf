package web

import (
	"context"
	"net/http"

	"learnpath/catalog"
	"learnpath/config"
	"learnpath/database"
	"learnpath/intake"
	"learnpath/matching"
	"learnpath/retrieval"
	"learnpath/web/handlers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
	config *config.Config
}

func NewServer(engine *matching.Engine, items []catalog.CourseItem, passages *retrieval.Store, store *database.PostgresStore, cfg *config.Config, logger *zap.Logger) *Server {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()

		logger.Debug("Handled request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	})

	server := &Server{
		router: router,
		logger: logger,
		config: cfg,
	}

	parser := intake.NewParser(logger)
	recommendHandler := handlers.NewRecommendHandler(engine, items, parser, passages, cfg, logger)
	tagsHandler := handlers.NewTagsHandler(engine, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tags": engine.TagCount(), "items": len(items)})
	})
	router.POST("/api/recommend", recommendHandler.Recommend)
	router.POST("/api/extract", tagsHandler.Extract)
	router.GET("/api/tags", tagsHandler.List)

	if store != nil {
		itemsHandler := handlers.NewItemsHandler(store, logger)
		router.GET("/api/items/:id", itemsHandler.Get)
	}

	return server
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
