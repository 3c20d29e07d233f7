package bench

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/acronis/perfkit/logger"
)

// Master owns the Registry and Policy for one process and drives every
// worker process spawn, merge, and output step of a single (non-compare)
// run.
type Master struct {
	Policy   *Policy
	Registry *Registry
	Logger   logger.Logger

	// ProgramArgs are the non-flag arguments the invoking binary was started
	// with, reused verbatim on every worker command line ahead of the
	// worker-only flags buildWorkerCommand appends. The Master's own flags
	// are not part of it and are not forwarded.
	ProgramArgs []string

	emitted int // benchmarks already written to Policy.Output/Append, for the append-after-first rule
}

// NewLogger builds the logger.Logger a Policy's verbosity implies, using
// logger.NewPlaneLogger(level, storeLastMessage).
func NewLogger(policy *Policy) logger.Logger {
	level := logger.LevelWarn
	if policy.Quiet {
		level = logger.LevelError
	} else if policy.Verbose > 0 {
		level = logger.LogLevel(policy.Verbose) + logger.LevelWarn
	}

	return logger.NewPlaneLogger(level, false)
}

// RunAll runs every registered task to completion and returns one Benchmark
// per task, in registration order.
func (m *Master) RunAll(ctx context.Context) ([]Benchmark, error) {
	results := make([]Benchmark, 0, m.Registry.Len())

	for _, task := range m.Registry.Tasks() {
		benchmark, err := m.runTask(ctx, task)
		if err != nil {
			return nil, fmt.Errorf("bench: task %q failed: %w", task.Name, err)
		}

		results = append(results, benchmark)

		if err := m.emitBenchmark(benchmark); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (m *Master) runTask(ctx context.Context, task *Task) (Benchmark, error) {
	loops := m.Policy.Loops

	if loops == 0 && task.SkipCalibration {
		loops = 1
	} else if loops == 0 {
		calibrated, err := m.spawnWorker(ctx, task.WorkerTaskID, true, 1)
		if err != nil {
			return Benchmark{}, fmt.Errorf("calibration failed: %w", err)
		}

		if len(calibrated.Runs) != 1 || !calibrated.Runs[0].IsCalibration() {
			return Benchmark{}, &WorkerProtocolError{Err: fmt.Errorf("calibration worker returned a malformed run")}
		}

		loops = calibrated.Runs[0].CalibratedLoops()

		// Loops is restored to 0 once this task is done so the next task
		// calibrates independently instead of inheriting this one's count.
		m.Policy.Loops = loops
		defer func() { m.Policy.Loops = 0 }()
	}

	benchmark := Benchmark{Name: task.Name}

	for i := 0; i < m.Policy.Processes; i++ {
		if !m.Policy.Quiet {
			m.progress(i)
		}

		run, err := m.spawnWorker(ctx, task.WorkerTaskID, false, loops)
		if err != nil {
			return Benchmark{}, fmt.Errorf("worker %d/%d failed: %w", i+1, m.Policy.Processes, err)
		}

		if len(run.Runs) != 1 {
			return Benchmark{}, &WorkerProtocolError{Err: fmt.Errorf("worker produced %d runs instead of 1", len(run.Runs))}
		}

		if err := benchmark.AddRun(run.Runs[0]); err != nil {
			return Benchmark{}, &WorkerProtocolError{Err: err}
		}

		if benchmark.Metadata == nil {
			benchmark.Metadata = run.Metadata
		}
	}

	if !m.Policy.Quiet {
		m.Logger.Info("%s: %d runs, %d total loops, %.3fs total", benchmark.Name, len(benchmark.Runs), benchmark.TotalLoops(), benchmark.TotalDuration())
	}

	return benchmark, nil
}

// progress prints a single-dot-per-worker indicator used when verbosity is
// at the default level.
func (m *Master) progress(i int) {
	if m.Policy.Verbose == 0 {
		fmt.Fprint(os.Stderr, ".")
		if i > 0 && (i+1)%60 == 0 {
			fmt.Fprintln(os.Stderr)
		}
	}
}

// spawnWorker runs a single worker's lifecycle: build the command line,
// open the pipe, fork/exec, read the Suite back, wait for exit.
func (m *Master) spawnWorker(ctx context.Context, workerTaskID int, calibrate bool, loops uint64) (Benchmark, error) {
	policy := *m.Policy
	policy.Loops = loops

	read, write, err := createPipe()
	if err != nil {
		return Benchmark{}, err
	}

	args := buildWorkerCommand(m.Policy.RuntimePath, m.ProgramArgs, &policy, workerTaskID, calibrate, pipeChildFD, nil)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.ExtraFiles = []*os.File{write}
	cmd.Env = buildWorkerEnviron(m.Policy.InheritEnviron, m.Policy.Locale)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = killGrace

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		write.Close()
		read.Close()

		return Benchmark{}, &WorkerSpawnError{Err: err}
	}

	write.Close()

	benchmark, readErr := readSuiteFromPipe(read)
	read.Close()

	waitErr := cmd.Wait()

	if waitErr != nil {
		return Benchmark{}, fmt.Errorf("bench: worker exited with error: %w (stderr: %s)", waitErr, stderr.String())
	}

	if readErr != nil {
		return Benchmark{}, &WorkerProtocolError{Err: readErr}
	}

	return benchmark, nil
}

// emitBenchmark writes one completed Benchmark to --output/--append. An
// existing --output file is only fatal for the first benchmark emitted in
// this process; every later call in the same run appends instead.
func (m *Master) emitBenchmark(benchmark Benchmark) error {
	defer func() { m.emitted++ }()

	path := m.Policy.Output
	if path == "" {
		path = m.Policy.Append
	}

	if path == "" {
		return nil
	}

	return appendBenchmarkToFile(path, benchmark, m.emitted > 0 || m.Policy.Append != "")
}
