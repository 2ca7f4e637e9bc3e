package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server is the internal metrics and health sidecar. It runs on its own
// port so the scrape endpoint never shares the public API surface.
type Server struct {
	echo  *echo.Echo
	port  int
	redis *redis.Client
}

func NewServer(port int, redisClient *redis.Client) *Server {
	e := echo.New()

	s := &Server{
		echo:  e,
		port:  port,
		redis: redisClient,
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", s.health)
	return s
}

func (s *Server) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	redisStatus := "ok"
	healthy := true
	if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = err.Error()
		healthy = false
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status": map[string]string{"redis": redisStatus},
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.echo,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}()

	slog.Info("metrics server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("metrics server stopped", "error", err)
	}
}
