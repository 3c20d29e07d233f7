//go:build darwin
// +build darwin

package bench

import "fmt"

// setCPUAffinity is unavailable on Darwin: the OS doesn't expose a portable
// sched_setaffinity equivalent. We at least bounds-check the requested CPU
// ids against hw.ncpu via GetSysctlValueInt so the caller gets a precise
// error instead of a silent no-op.
func setCPUAffinity(cpus []int) error {
	if ncpu, err := GetSysctlValueInt("hw.ncpu"); err == nil {
		for _, cpu := range cpus {
			if int64(cpu) >= ncpu {
				return fmt.Errorf("CPU affinity not available on darwin: cpu %d is out of range (hw.ncpu=%d)", cpu, ncpu)
			}
		}
	}

	return fmt.Errorf("CPU affinity not available on darwin")
}
