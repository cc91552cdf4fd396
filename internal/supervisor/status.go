package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusServer exposes health, list sizes and metrics over HTTP.
type StatusServer struct {
	store   store.Store
	metrics *Metrics
	log     logger.Logger
	engine  *gin.Engine
}

func NewStatusServer(st store.Store, m *Metrics, log logger.Logger) *StatusServer {
	s := &StatusServer{store: st, metrics: m, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.health)
	r.GET("/stats", s.stats)
	r.GET("/metrics", s.refreshed(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	s.engine = r
	return s
}

func (s *StatusServer) Handler() http.Handler { return s.engine }

func (s *StatusServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "jobsbot supervisor is running",
		"status":  "healthy",
	})
}

func (s *StatusServer) stats(c *gin.Context) {
	lists, queue, err := s.refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lists": lists,
		"queue": queue,
	})
}

// refreshed updates the list gauges before every scrape.
func (s *StatusServer) refreshed(h http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, err := s.refresh(c.Request.Context()); err != nil {
			s.log.Warn("Could not refresh list gauges", logger.Error(err))
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// refresh reads the list sizes and the queue size and records them in the
// gauges.
func (s *StatusServer) refresh(ctx context.Context) (map[string]int, int, error) {
	lists := make(map[string]int, len(store.Collections))
	for _, coll := range store.Collections {
		urls, err := s.store.Load(ctx, coll)
		if err != nil {
			return nil, 0, err
		}
		lists[string(coll)] = len(urls)
		s.metrics.ListSize.WithLabelValues(string(coll)).Set(float64(len(urls)))
	}

	queue, err := store.Queue(ctx, s.store)
	if err != nil {
		return nil, 0, err
	}
	s.metrics.QueueSize.Set(float64(len(queue)))
	return lists, len(queue), nil
}

// Serve listens on addr until ctx is cancelled.
func (s *StatusServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("📡 Status server listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
