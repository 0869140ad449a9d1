// Package sysmon samples host CPU and memory usage for the dashboard and
// the /metrics endpoint.
package sysmon

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats is one host-wide usage sample.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// String renders the sample as "cpu 12.5%  mem 40.1%".
func (s Stats) String() string {
	return fmt.Sprintf("cpu %.1f%%  mem %.1f%%", s.CPUPercent, s.MemPercent)
}

// Sample collects a host snapshot. CPU usage is the delta since the previous
// call, so the first sample of a process may read 0. Fields the platform
// cannot report stay zero.
func Sample(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		s.MemPercent = vm.UsedPercent
	}
	return s
}
