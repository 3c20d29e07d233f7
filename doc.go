// Package bench is a process-level micro-benchmark harness modeled on
// pyperf: it runs a user-registered measurement function inside many
// short-lived worker processes, each spawned by a Master, each reporting
// one Benchmark's worth of timing samples over a pipe before exiting.
//
// Running a benchmark out of process isolates each measurement from the
// page cache, GC, and JIT warmup state left behind by earlier runs, at the
// cost of the fork/exec overhead resolvePolicy and calibrate exist
// to amortize.
//
// A program using this package registers one or more named tasks with a
// Registry and calls Main, which builds a Runner from the parsed Options:
//
//	var registry bench.Registry
//	registry.BenchFunc("append", func(loops uint64) error {
//	    for i := uint64(0); i < loops; i++ {
//	        _ = append([]byte(nil), data...)
//	    }
//	    return nil
//	}, nil)
//
//	func main() {
//	    os.Exit(bench.Main(&registry))
//	}
//
// The same binary acts as both the entry point invoked by a user (the
// Master role) and, re-exec'd with --worker, the measurement process (the
// Worker role); bench.Main dispatches between the two based on the parsed
// Options.
//
// Policy resolution, calibration, CPU affinity, and the A/B compare-to
// driver are documented on their respective types; see Policy, Runner, and
// Comparator.
package bench
