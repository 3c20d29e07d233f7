//go:build linux
// +build linux

package bench

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setCPUAffinity pins the current process to the given CPU set using
// sched_setaffinity.
func setCPUAffinity(cpus []int) error {
	var set unix.CPUSet

	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity: %w", err)
	}

	return nil
}
