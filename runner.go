package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acronis/perfkit/logger"
)

// Runner is the top-level entry point a program using this package
// constructs: it owns the resolved Policy, the caller's Registry, and a
// Logger, and dispatches to runWorker, a plain Master run, or
// RunCompare, depending on how it was invoked.
type Runner struct {
	Policy      *Policy
	Registry    *Registry
	Logger      logger.Logger
	programArgs []string
}

// NewRunner parses argv against Options, resolves a Policy, and builds the
// Logger the resolved verbosity implies.
func NewRunner(applicationName string, registry *Registry, argv []string, caps RuntimeCapabilities) (*Runner, error) {
	opts, rest, err := ParseOptions(applicationName, argv)
	if err != nil {
		return nil, err
	}

	policy, err := resolvePolicy(opts, caps)
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		Policy:      policy,
		Registry:    registry,
		Logger:      NewLogger(policy),
		programArgs: rest,
	}

	if !policy.Worker {
		// A Master run can open one pipe and child process per worker; raise
		// the file descriptor limit so a high --processes count doesn't run
		// into ulimit -n on the host.
		runner.adjustFilenoUlimit()
	}

	return runner, nil
}

// Run dispatches this process to runWorker, a plain Master run, or
// RunCompare, per the resolved Policy.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := withInterruptHandling(ctx)
	defer cancel()

	if r.Policy.Worker {
		err := runWorker(ctx, r.Policy, r.Registry, r.Logger)
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Benchmark worker interrupted: exit")
		}

		return err
	}

	// Pin the Master before spawning any worker: an auto-detected isolated
	// CPU set is recorded in Policy.AffinityCPUs and so reaches every worker
	// command line as --affinity.
	if err := bindCPUAffinity(r.Policy, r.Logger); err != nil {
		return err
	}

	master := &Master{
		Policy:      r.Policy,
		Registry:    r.Registry,
		Logger:      r.Logger,
		ProgramArgs: r.programArgs,
	}

	if r.Policy.CompareTo != "" {
		lines, err := RunCompare(ctx, master, defaultComparator{})
		if err != nil {
			return err
		}

		for _, line := range lines {
			fmt.Println(line)
		}

		return nil
	}

	results, err := master.RunAll(ctx)
	if err != nil {
		return err
	}

	r.report(results)

	return nil
}

func (r *Runner) report(results []Benchmark) {
	for _, b := range results {
		if r.Policy.Dump {
			printDump(os.Stdout, b)
		}

		if r.Policy.ShowMetadata {
			printMetadata(os.Stdout, b)
		}

		if r.Policy.Stats {
			printStats(os.Stdout, b)
		}

		if r.Policy.Histogram {
			printHistogram(os.Stdout, b)
		}

		if !r.Policy.Dump && !r.Policy.Stats && !r.Policy.Histogram {
			printStats(os.Stdout, b)
		}
	}
}

// Main is the convenience entry point: a program registers its tasks, then
// calls Main(&registry) from func main and os.Exit's with the returned
// code. It handles both the Master role (the user invoking the binary
// directly) and the Worker role (the same binary re-exec'd with --worker)
// because Policy.Worker routes Runner.Run to the right one.
func Main(registry *Registry) int {
	return MainWithCapabilities(registry, RuntimeCapabilities{HasJIT: false})
}

// MainWithCapabilities is Main for a program that wants to opt into the
// JIT-aware value/warmup/process defaults — for instance a harness driving
// a compiled-then-warmed-up plugin runtime rather than plain Go code.
func MainWithCapabilities(registry *Registry, caps RuntimeCapabilities) int {
	appName := filepath.Base(os.Args[0])

	runner, err := NewRunner(appName, registry, os.Args[1:], caps)
	if err != nil {
		var configErr *ConfigError
		if errors.As(err, &configErr) {
			fmt.Fprintln(os.Stderr, configErr.Error())
			return 1
		}

		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if runner.Policy.RuntimePath == "" && !runner.Policy.Worker {
		runner.Policy.RuntimePath = appName

		if exe, exeErr := os.Executable(); exeErr == nil {
			runner.Policy.RuntimePath = exe
		}
	}

	if err := runner.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}
