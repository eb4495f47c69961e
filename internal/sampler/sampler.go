// Package sampler takes periodic host resource snapshots during a replay
// run. Purely observational: nothing here feeds back into scheduling or
// rate control.
package sampler

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"commtester/internal/errs"
)

// Snapshot is one host resource reading.
type Snapshot struct {
	CPUPercent  float64
	MemUsedPct  float64
	MemUsedMB   uint64
	MemTotalMB  uint64
}

// Logger is the subset of structured logging a Sampler reports through.
type Logger interface {
	Debugf(format string, args ...interface{})
}

// Sampler reports one Snapshot per call to Sample, logged at debug level.
type Sampler struct {
	log Logger
}

func New(log Logger) *Sampler {
	return &Sampler{log: log}
}

// Sample reads current CPU and memory usage and logs it. It never returns
// an error that should abort a replay run; gopsutil failures are reported
// as errs.ConfigError only so a caller that does check the error can
// distinguish "sampling unsupported on this host" from a real fault, but
// the replay planner treats any error here as non-fatal.
func (s *Sampler) Sample(ctx context.Context) error {
	snap, err := read()
	if err != nil {
		return err
	}
	s.log.Debugf("resource sample: cpu=%.1f%% mem=%.1f%% (%d/%d MB)",
		snap.CPUPercent, snap.MemUsedPct, snap.MemUsedMB, snap.MemTotalMB)
	return nil
}

func read() (Snapshot, error) {
	percents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return Snapshot{}, errs.Wrap(errs.ConfigError, "cpu.Percent", err)
	}
	var cpuPct float64
	if len(percents) > 0 {
		cpuPct = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return Snapshot{}, errs.Wrap(errs.ConfigError, "mem.VirtualMemory", err)
	}

	return Snapshot{
		CPUPercent: cpuPct,
		MemUsedPct: vm.UsedPercent,
		MemUsedMB:  vm.Used / (1024 * 1024),
		MemTotalMB: vm.Total / (1024 * 1024),
	}, nil
}
