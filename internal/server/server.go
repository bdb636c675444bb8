// Package server exposes the HTTP ingest API for event producers plus the
// liveness and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cryptohawk/cryptohawk/internal/logger"
	"github.com/cryptohawk/cryptohawk/internal/models"
)

// Ingestor accepts raw events fire-and-forget.
type Ingestor interface {
	Process(models.RawEvent)
}

// Server wires the ingest routes to the two domain processors.
type Server struct {
	httpServer *http.Server
}

// New builds the server on the given port.
func New(port int, cex, market Ingestor) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/events/cex", ingestHandler(cex))
	router.POST("/events/market-stats", ingestHandler(market))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ingestHandler decodes the event and hands it to the processor. Producers
// do not await notification outcomes, so any decodable body is accepted with
// 202 regardless of what the pipeline decides.
func ingestHandler(proc Ingestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ev models.RawEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
			return
		}
		proc.Process(ev)
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
