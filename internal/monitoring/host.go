package monitoring

import (
	"context"
	"os"

	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const bytesPerMB = 1024 * 1024

// HostStats samples the machine the backend runs on. It fits
// services.HostStatsFunc.
func HostStats(ctx context.Context) (*models.HostStats, error) {
	stats := &models.HostStats{}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		// Fall back to what the OS can tell without gopsutil.
		if name, herr := os.Hostname(); herr == nil {
			stats.Hostname = name
		}
	} else {
		stats.Hostname = info.Hostname
		stats.UptimeSeconds = info.Uptime
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	stats.MemoryPercent = vm.UsedPercent
	stats.MemoryUsedMB = vm.Used / bytesPerMB
	stats.MemoryTotalMB = vm.Total / bytesPerMB

	// Zero interval compares against the previous call instead of sleeping.
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	return stats, nil
}
