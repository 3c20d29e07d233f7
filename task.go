package bench

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// TaskKind tags which variant of Task a worker is about to run. Modeled as a
// tagged variant with a measurement closure rather than an interface
// hierarchy.
type TaskKind int

const (
	// WorkerProcessTaskKind wraps an in-process measurement function.
	WorkerProcessTaskKind TaskKind = iota
	// BenchCommandTaskKind wraps an external command timed by a helper launcher.
	BenchCommandTaskKind
)

// MeasureFunc is the signature every Task variant's measurement closure
// implements: given a loop count, run the benchmarked body that many times
// and report how long it took.
type MeasureFunc func(ctx context.Context, loops uint64) (float64, error)

// Task is an in-memory description of what to measure.
type Task struct {
	Kind            TaskKind
	Name            string
	Metadata        map[string]interface{}
	InnerLoops      uint64 // 0 means unset/not reported
	WorkerTaskID    int    // 0-based registration order, stable across registrations
	SkipCalibration bool   // true for tasks that can only ever run a single inner loop

	Measure MeasureFunc

	// Command is only set for BenchCommandTaskKind; it is the argv of the
	// subprocess being benchmarked (not the timing helper wrapping it).
	Command []string
}

// commandMaxRSSKey is the metadata key BenchCommandTask accumulates the
// maximum observed RSS of the timed subprocess under.
const commandMaxRSSKey = "command_max_rss"

// NewWorkerProcessTask builds a Task around an in-process measurement
// function, used by BenchFunc/BenchTimeFunc.
func NewWorkerProcessTask(name string, fn MeasureFunc, metadata map[string]interface{}) *Task {
	return &Task{
		Kind:     WorkerProcessTaskKind,
		Name:     name,
		Metadata: metadata,
		Measure:  fn,
	}
}

// helperLauncherPath is overridable in tests; in production it resolves to
// the companion cmd/procbench-timeit-helper binary built alongside the main
// program, which prints elapsed seconds (and optionally max RSS) on stdout.
var helperLauncherPath = func() (string, error) {
	path, err := exec.LookPath("procbench-timeit-helper")
	if err != nil {
		return "", fmt.Errorf("bench: timeit helper not found on PATH: %w", err)
	}

	return path, nil
}

// NewBenchCommandTask builds a Task around an external command, timed by a
// helper launcher that prints elapsed seconds (and optionally max RSS) on
// stdout.
func NewBenchCommandTask(name string, command []string) *Task {
	task := &Task{
		Kind:     BenchCommandTaskKind,
		Name:     name,
		Command:  command,
		Metadata: map[string]interface{}{"command": quoteCommand(command)},
	}

	task.Measure = func(ctx context.Context, loops uint64) (float64, error) {
		helper, err := helperLauncherPath()
		if err != nil {
			return 0, err
		}

		args := append([]string{strconv.FormatUint(loops, 10)}, command...)

		cmd := exec.CommandContext(ctx, helper, args...)

		out, err := cmd.CombinedOutput()
		if err != nil {
			return 0, fmt.Errorf("bench: command %q failed: %w", command, err)
		}

		timing, rss, err := parseTimeitOutput(out)
		if err != nil {
			return 0, err
		}

		if rss > 0 {
			max, _ := task.Metadata[commandMaxRSSKey].(int64)
			if rss > max {
				task.Metadata[commandMaxRSSKey] = rss
			}
		}

		return timing, nil
	}

	return task
}

// parseTimeitOutput parses the helper launcher's stdout: elapsed seconds on
// the first line, an optional max-RSS integer (bytes) on the second.
func parseTimeitOutput(output []byte) (timing float64, rss int64, err error) {
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return 0, 0, fmt.Errorf("bench: empty timeit helper output")
	}

	timing, err = strconv.ParseFloat(strings.TrimSpace(lines[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bench: failed to parse timeit helper output %q: %w", output, err)
	}

	if len(lines) >= 2 && strings.TrimSpace(lines[1]) != "" {
		rss, err = strconv.ParseInt(strings.TrimSpace(lines[1]), 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("bench: failed to parse timeit helper rss %q: %w", lines[1], err)
		}
	}

	return timing, rss, nil
}

func quoteCommand(command []string) string {
	quoted := make([]string, len(command))
	for i, c := range command {
		quoted[i] = strconv.Quote(c)
	}

	return strings.Join(quoted, " ")
}
