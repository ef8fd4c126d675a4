// Package observability collects process self-stats for the heartbeat.
package observability

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/process"
)

// Stats aggregates the runtime metrics reported by the heartbeat worker.
type Stats struct {
	AllocMemMb   uint64  `json:"alloc_mem_mb"`
	RSSMb        uint64  `json:"rss_mb"`
	CPUPercent   float64 `json:"cpu_percent"`
	NumGC        uint32  `json:"num_gc"`
	NumGoroutine int     `json:"num_goroutine"`
}

// Monitor reads Go runtime counters and OS-level process metrics.
type Monitor struct {
	proc *process.Process
}

func NewMonitor() (*Monitor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Monitor{proc: p}, nil
}

// Collect takes a point-in-time snapshot of the process.
func (m *Monitor) Collect() (Stats, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := Stats{
		AllocMemMb:   ms.Alloc / 1024 / 1024,
		NumGC:        ms.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
	}

	if memInfo, err := m.proc.MemoryInfo(); err == nil {
		stats.RSSMb = memInfo.RSS / 1024 / 1024
	}
	if cpu, err := m.proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	return stats, nil
}
