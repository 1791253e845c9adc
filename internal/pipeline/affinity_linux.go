//go:build linux

package pipeline

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setAffinity pins the calling OS thread to cpu.
// The caller must hold runtime.LockOSThread.
func setAffinity(cpu int) error {
	if cpu < 0 {
		return fmt.Errorf("pipeline: invalid CPU %d", cpu)
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("pipeline: pinning to CPU %d: %w", cpu, err)
	}
	return nil
}
