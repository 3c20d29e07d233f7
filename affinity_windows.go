//go:build windows
// +build windows

package bench

import "fmt"

// setCPUAffinity is unavailable on Windows in this harness; wiring
// SetProcessAffinityMask is left as future work.
func setCPUAffinity(cpus []int) error {
	return fmt.Errorf("CPU affinity not available on windows")
}
