package workers

import (
	"context"
	"log/slog"
	"time"

	"duochat/observability"
)

// HeartbeatWorker periodically logs process health (CPU, RSS, goroutines)
// so an operator can spot leaks in the connection or room registries.
type HeartbeatWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitor *observability.Monitor, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitor: monitor, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats, err := w.monitor.Collect()
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("heartbeat",
				"alloc_mb", stats.AllocMemMb,
				"rss_mb", stats.RSSMb,
				"cpu_percent", stats.CPUPercent,
				"goroutines", stats.NumGoroutine,
				"num_gc", stats.NumGC,
			)
		}
	}
}
