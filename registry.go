package bench

import (
	"context"
	"fmt"
	"time"
)

// Registry is the ordered collection of named benchmarks a program builds
// up before handing control to Main. Both the Master (to print names
// and dispatch --worker-task indices) and the Worker (to look its one task
// up by index) walk the same Registry.
type Registry struct {
	tasks []*Task
	names *Set
}

// Tasks returns the registered tasks in registration order. The slice must
// not be mutated by the caller.
func (r *Registry) Tasks() []*Task {
	return r.tasks
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.tasks)
}

// TaskByWorkerID returns the task registered with the given WorkerTaskID, or
// an error if none matches — the error a Worker given a stale or malformed
// --worker-task index surfaces.
func (r *Registry) TaskByWorkerID(id int) (*Task, error) {
	for _, t := range r.tasks {
		if t.WorkerTaskID == id {
			return t, nil
		}
	}

	return nil, fmt.Errorf("bench: no task registered with worker-task index %d", id)
}

func (r *Registry) register(task *Task) error {
	if r.names == nil {
		r.names = NewSet()
	}

	if task.Name == "" {
		return fmt.Errorf("bench: task name must not be empty")
	}

	if r.names.Contains(task.Name) {
		return fmt.Errorf("bench: a task named %q is already registered", task.Name)
	}

	task.WorkerTaskID = len(r.tasks)
	r.names.Add(task.Name)
	r.tasks = append(r.tasks, task)

	return nil
}

// BenchFunc registers an in-process measurement whose body runs loops times
// per call and reports nothing about its own timing: the Registry wraps it
// with a wall-clock measurement, mirroring pyperf's bench_func.
func (r *Registry) BenchFunc(name string, fn func(loops uint64) error, metadata map[string]interface{}) error {
	measure := func(ctx context.Context, loops uint64) (float64, error) {
		start := time.Now()

		if err := fn(loops); err != nil {
			return 0, fmt.Errorf("bench: task %q failed: %w", name, err)
		}

		return time.Since(start).Seconds(), nil
	}

	return r.register(NewWorkerProcessTask(name, measure, metadata))
}

// BenchTimeFunc registers an in-process measurement that times itself (for
// example because it wants to exclude setup/teardown from the timed
// region) and reports elapsed seconds directly, mirroring pyperf's
// bench_time_func.
func (r *Registry) BenchTimeFunc(name string, fn func(loops uint64) (float64, error), metadata map[string]interface{}) error {
	measure := func(ctx context.Context, loops uint64) (float64, error) {
		dt, err := fn(loops)
		if err != nil {
			return 0, fmt.Errorf("bench: task %q failed: %w", name, err)
		}

		return dt, nil
	}

	return r.register(NewWorkerProcessTask(name, measure, metadata))
}

// BenchCommand registers an external command as the benchmarked body,
// timed out-of-process by the companion timeit helper binary, mirroring
// pyperf's bench_command.
func (r *Registry) BenchCommand(name string, command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("bench: command for task %q must not be empty", name)
	}

	return r.register(NewBenchCommandTask(name, command))
}

// TimeIt registers a task whose single sample IS its wall-clock duration and
// that never iterates its body more than once per sample (inner_loops is
// pinned to 1, calibration is skipped). It is the escape hatch for bodies
// too expensive or too side-effectful to run in a tight loop.
func (r *Registry) TimeIt(name string, fn func() error, metadata map[string]interface{}) error {
	measure := func(ctx context.Context, loops uint64) (float64, error) {
		if loops != 1 {
			return 0, fmt.Errorf("bench: task %q registered via TimeIt cannot run more than one inner loop", name)
		}

		start := time.Now()

		if err := fn(); err != nil {
			return 0, fmt.Errorf("bench: task %q failed: %w", name, err)
		}

		return time.Since(start).Seconds(), nil
	}

	task := NewWorkerProcessTask(name, measure, metadata)
	task.InnerLoops = 1
	task.SkipCalibration = true

	return r.register(task)
}
