// Command procbench-timeit-helper runs a command line a given number of
// times back to back and prints the total elapsed time, and optionally the
// peak RSS observed across all runs, on stdout. It is the out-of-process
// timing helper bench.NewBenchCommandTask launches for every sample of a
// command-based task.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: procbench-timeit-helper LOOPS COMMAND [ARGS...]")
		os.Exit(2)
	}

	loops, err := strconv.ParseUint(os.Args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid loop count %q: %v\n", os.Args[1], err)
		os.Exit(2)
	}

	command := os.Args[2:]

	var maxRSS uint64

	start := time.Now()

	for i := uint64(0); i < loops; i++ {
		rss, err := runOnce(command)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		if rss > maxRSS {
			maxRSS = rss
		}
	}

	elapsed := time.Since(start).Seconds()

	fmt.Println(elapsed)

	if maxRSS > 0 {
		fmt.Println(maxRSS)
	}
}

// runOnce runs command to completion and samples its peak RSS via gopsutil,
// polling from a background goroutine since the subprocess itself cannot be
// asked to report its own memory use.
func runOnce(command []string) (uint64, error) {
	cmd := exec.Command(command[0], command[1:]...)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %q: %w", command[0], err)
	}

	done := make(chan struct{})

	var maxRSS uint64

	go func() {
		defer close(done)

		proc, err := process.NewProcess(int32(cmd.Process.Pid))
		if err != nil {
			return
		}

		ticker := time.NewTicker(2 * time.Millisecond)
		defer ticker.Stop()

		for range ticker.C {
			info, err := proc.MemoryInfo()
			if err != nil {
				return
			}

			if info.RSS > maxRSS {
				maxRSS = info.RSS
			}
		}
	}()

	waitErr := cmd.Wait()
	<-done

	if waitErr != nil {
		return 0, fmt.Errorf("command %q failed: %w", command[0], waitErr)
	}

	return maxRSS, nil
}
