package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorPredictorHealth polls checker every interval until ctx is done, storing the
// latest result in healthy. Only transitions are logged.
func MonitorPredictorHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		isHealthy := checker.HealthCheck(checkCtx)
		if previous := healthy.Swap(isHealthy); previous != isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Predictor is healthy")
			} else {
				slog.Warn("[HealthCheck] Predictor is unhealthy")
			}
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
