package curator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/logger"
	"artifact-explorer/api/internal/metrics"
)

// Metered wraps an Engine with Prometheus counters and a log line per call.
type Metered struct {
	Engine
}

func WithMetrics(e Engine) Engine {
	if e == nil {
		return nil
	}
	return Metered{Engine: e}
}

func (m Metered) Describe(ctx context.Context, req artifact.Request) (string, error) {
	start := time.Now()
	out, err := m.Engine.Describe(ctx, req)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.DescribeTotal.WithLabelValues(m.Name(), status).Inc()
	metrics.DescribeDuration.WithLabelValues(m.Name()).Observe(elapsed.Seconds())
	if req.HasImage() {
		metrics.DescribeWithImage.Inc()
	}

	logger.FromContext(ctx).Info("describe",
		zap.String("engine", m.Name()),
		zap.String("model", m.GetModel()),
		zap.String("artifact", req.Name),
		zap.Int("word_count", req.WordCount),
		zap.Bool("image", req.HasImage()),
		zap.Duration("elapsed", elapsed),
		zap.String("status", status),
	)
	return out, err
}
