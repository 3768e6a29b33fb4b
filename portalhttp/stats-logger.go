package portalhttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

type endpointStats struct {
	count       int
	totalTime   time.Duration
	lastPrinted time.Time
}

// statsLogger aggregates request counts and latencies per route and logs
// them periodically, together with the number of live sessions.
type statsLogger struct {
	stats         map[string]*endpointStats
	mu            sync.Mutex
	flushInterval time.Duration
	logger        *slog.Logger
	sessions      func() int
}

func newStatsLogger(ctx context.Context, logger *slog.Logger, sessions func() int) *statsLogger {
	sl := &statsLogger{
		stats:         make(map[string]*endpointStats),
		flushInterval: time.Minute,
		logger:        logger,
		sessions:      sessions,
	}
	go sl.periodicFlush(ctx)
	return sl
}

func (sl *statsLogger) periodicFlush(ctx context.Context) {
	ticker := time.NewTicker(sl.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sl.flushStats(time.Now())
		}
	}
}

func (sl *statsLogger) flushStats(now time.Time) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	for endpoint, stats := range sl.stats {
		if stats.count > 0 && now.Sub(stats.lastPrinted) >= sl.flushInterval {
			avgTimeMs := float64(stats.totalTime.Microseconds()) / float64(stats.count) / 1000.0

			sl.logger.Debug("endpoint stats",
				"endpoint", endpoint,
				"count", stats.count,
				"avg_time_ms", fmt.Sprintf("%.2f", avgTimeMs),
				"period", sl.flushInterval,
			)
			stats.count = 0
			stats.totalTime = 0
			stats.lastPrinted = now
		}
	}
	sl.logger.Info("live sessions", "count", sl.sessions())
}

func (sl *statsLogger) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		// route pattern keeps ids out of the keys
		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		sl.record(r.Method+" "+pattern, time.Since(start))
	})
}

func (sl *statsLogger) record(endpoint string, d time.Duration) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if _, exists := sl.stats[endpoint]; !exists {
		sl.stats[endpoint] = &endpointStats{}
	}
	sl.stats[endpoint].count++
	sl.stats[endpoint].totalTime += d
}

func (sl *statsLogger) snapshot(endpoint string) (int, time.Duration) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	s, ok := sl.stats[endpoint]
	if !ok {
		return 0, 0
	}
	return s.count, s.totalTime
}
