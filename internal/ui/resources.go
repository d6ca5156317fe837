package ui

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/expath/xproj/internal/javaproc"
)

// HostStats is a sample of machine-wide resources
type HostStats struct {
	CPUPercent  float64
	MemoryUsed  uint64
	MemoryTotal uint64
	MemPercent  float64
}

// GetHostStats samples CPU and memory. Fields stay zero when a sample
// fails.
func GetHostStats() HostStats {
	var stats HostStats

	// Non-blocking: compares with the previous call
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsed = vm.Used
		stats.MemoryTotal = vm.Total
		stats.MemPercent = vm.UsedPercent
	}
	return stats
}

// FormatBytes formats bytes into a human-readable string
func FormatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatUsage renders a process sample on one line.
func FormatUsage(pid int, u javaproc.Usage) string {
	return fmt.Sprintf("pid %d · %s rss · %.1f%% cpu · %d threads",
		pid, FormatBytes(u.RSS), u.CPUPercent, u.Threads)
}

// FormatHost renders a host sample on one line.
func FormatHost(s HostStats) string {
	return fmt.Sprintf("host %.1f%% cpu · %s / %s mem",
		s.CPUPercent, FormatBytes(s.MemoryUsed), FormatBytes(s.MemoryTotal))
}

// FormatElapsed rounds d for display.
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return d.Round(100 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
