package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type resultReader interface {
	GetByRoomID(ctx context.Context, roomID string) (*entity.MatchResult, error)
}

type Server struct {
	logger      *slog.Logger
	results     resultReader
	corsOrigin  string
	environment string
}

func New(logger *slog.Logger, results resultReader, corsOrigin, environment string) *Server {
	return &Server{
		logger:      logger.With("component", "rest"),
		results:     results,
		corsOrigin:  corsOrigin,
		environment: environment,
	}
}

// Router builds the gin engine with every discovery route.
func (that *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), that.requestLogger())

	if that.corsOrigin != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{that.corsOrigin},
			AllowCredentials: true,
			AllowMethods:     []string{http.MethodGet, http.MethodOptions},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
		}))
	}

	router.GET("/health", that.healthHandler)
	router.GET("/ping", that.pingHandler)

	api := router.Group("/api")
	api.GET("/games", that.listGamesHandler)
	api.GET("/games/:gameType", that.getGameHandler)
	api.GET("/results/:roomId", that.getResultHandler)

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	return router
}

// Start - starts HTTP server and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		that.logger.Debug("request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
