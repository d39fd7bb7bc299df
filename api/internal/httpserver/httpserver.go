package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"artifact-explorer/api/internal/handle"
	"artifact-explorer/api/internal/middleware"
)

// NewRouter wires middleware, the page, the JSON API, /healthz and /metrics.
func NewRouter(h *handle.Handle, log *zap.Logger, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(log),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.AccessLog(),
		middleware.CORS(corsOrigins),
	)
	r.SetHTMLTemplate(handle.Templates())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.Register(r)
	return r
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
