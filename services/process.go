package services

import (
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessStats describes resources used by the connector process
type ProcessStats struct {
	PID          int32   `json:"pid"`
	RSS          uint64  `json:"rss"`
	CPUPercent   float64 `json:"cpuPercent"`
	NumThreads   int32   `json:"numThreads"`
	NumGoroutine int     `json:"numGoroutine"`
}

// GetProcessStats returns stats of the current process, nil if unavailable
func GetProcessStats() *ProcessStats {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug().Err(err).Msg("could not get process")
		return nil
	}
	stats := &ProcessStats{PID: p.Pid, NumGoroutine: runtime.NumGoroutine()}
	if mem, err := p.MemoryInfo(); err == nil {
		stats.RSS = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		stats.NumThreads = n
	}
	return stats
}
