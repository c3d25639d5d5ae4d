// Package admin exposes the optional HTTP surface for one running bot:
// liveness, a runtime status snapshot, and Prometheus metrics.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evilmidget38/KittehIRCBot/internal/irc"
	"github.com/evilmidget38/KittehIRCBot/internal/logging"
	"github.com/evilmidget38/KittehIRCBot/internal/observability"
)

const shutdownGrace = 5 * time.Second

// StatusFunc supplies the point-in-time snapshot served on /status.
type StatusFunc func() irc.BotStatus

type Config struct {
	Name        string
	Addr        string
	CorsOrigins []string
	Status      StatusFunc
}

type Server struct {
	cfg     Config
	router  *gin.Engine
	started time.Time
}

func New(cfg Config) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logging.Logger()))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:     cfg,
		router:  r,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": s.cfg.Name,
		})
	})

	s.router.GET("/status", func(c *gin.Context) {
		if s.cfg.Status == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "status unavailable"})
			return
		}
		c.JSON(http.StatusOK, s.cfg.Status())
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the route tree for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve runs the HTTP listener until the context is cancelled, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logging.Infof("admin.Server listening service=%q addr=%q", s.cfg.Name, s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
