package bench

import (
	"context"
	"fmt"
	"os"

	"github.com/acronis/perfkit/logger"
)

// runWorker is the entire body of a process invoked with --worker: resolve
// which task to measure, pin CPU affinity, run either the calibration
// protocol or the warmups+values sample loop, and write exactly one
// Benchmark back over the pipe before returning.
func runWorker(ctx context.Context, policy *Policy, registry *Registry, log logger.Logger) error {
	if policy.WorkerTask == nil {
		if registry.Len() != 1 {
			return fmt.Errorf("bench: --worker-task is required when more than one task is registered")
		}

		id := 0
		policy.WorkerTask = &id
	}

	task, err := registry.TaskByWorkerID(*policy.WorkerTask)
	if err != nil {
		return err
	}

	log = logger.NewWorkerLogger(log.GetLevel(), false, *policy.WorkerTask)

	if err := bindCPUAffinity(policy, log); err != nil {
		if policy.AffinityExplicit {
			return err
		}

		if !policy.Quiet {
			log.Warn("%v", err)
		}
	}

	tracker := newMemoryTracker(policy)

	measure := func(loops uint64) (float64, error) {
		tracker.Start()
		defer tracker.Stop()

		dt, err := task.Measure(ctx, loops)
		if err != nil {
			return 0, err
		}

		if max := tracker.MaxRSS(); max > 0 {
			recordMaxRSS(task, max)
		}

		return dt, nil
	}

	run, err := func() (run Run, err error) {
		defer func() {
			if r := recover(); r != nil {
				printStack()
				err = fmt.Errorf("bench: task %q panicked: %v", task.Name, r)
			}
		}()

		if policy.Calibrate {
			return runCalibration(ctx, policy, measure)
		}

		return runSamples(ctx, policy, task, measure)
	}()

	if err != nil {
		return err
	}

	run.Metadata = mergeMetadata(run.Metadata, task.Metadata)

	benchmark := Benchmark{
		Name:     task.Name,
		Metadata: run.Metadata,
		Runs:     []Run{run},
	}

	return emitWorkerResult(policy, benchmark)
}

func runCalibration(ctx context.Context, policy *Policy, measure func(uint64) (float64, error)) (Run, error) {
	fn := func(ctx context.Context, loops uint64) (float64, error) {
		return measure(loops)
	}

	loops, err := calibrate(ctx, fn, policy.MinTime, policy.MaxTime)
	if err != nil {
		return Run{}, err
	}

	return NewCalibrationRun(loops, nil), nil
}

func runSamples(ctx context.Context, policy *Policy, task *Task, measure func(uint64) (float64, error)) (Run, error) {
	loops := policy.Loops
	if loops == 0 {
		return Run{}, fmt.Errorf("bench: worker invoked without a calibrated loop count")
	}

	run := Run{}

	sample := func(kind SampleKind) (Sample, error) {
		dt, err := measure(loops)
		if err != nil {
			return Sample{}, err
		}

		return Sample{Kind: kind, Loops: loops, InnerLoops: task.InnerLoops, Duration: dt}, nil
	}

	for i := 0; i < policy.Warmups; i++ {
		s, err := sample(WarmupSample)
		if err != nil {
			return Run{}, err
		}

		run.Warmups = append(run.Warmups, s)
	}

	for i := 0; i < policy.Values; i++ {
		select {
		case <-ctx.Done():
			return Run{}, ctx.Err()
		default:
		}

		s, err := sample(ValueSample)
		if err != nil {
			return Run{}, err
		}

		run.Values = append(run.Values, s)
	}

	return run, nil
}

func recordMaxRSS(task *Task, rss uint64) {
	if task.Metadata == nil {
		task.Metadata = map[string]interface{}{}
	}

	if cur, ok := task.Metadata[commandMaxRSSKey].(int64); !ok || int64(rss) > cur {
		task.Metadata[commandMaxRSSKey] = int64(rss)
	}
}

func mergeMetadata(run map[string]interface{}, task map[string]interface{}) map[string]interface{} {
	if len(task) == 0 {
		return run
	}

	merged := map[string]interface{}{}
	for k, v := range task {
		merged[k] = v
	}
	for k, v := range run {
		merged[k] = v
	}

	return merged
}

func newMemoryTracker(policy *Policy) MemoryTracker {
	if policy.TrackMemory || policy.Tracemalloc {
		return newRSSMemoryTracker(0)
	}

	return noopMemoryTracker{}
}

// emitWorkerResult writes the worker's single Benchmark to its pipe fd if
// --pipe was given, otherwise to stdout — matching pyperf's fallback
// of printing JSON to stdout when run standalone for debugging.
func emitWorkerResult(policy *Policy, benchmark Benchmark) error {
	if policy.PipeFD != 0 {
		w := os.NewFile(uintptr(policy.PipeFD), "pipe")
		return writeSuiteToPipe(w, benchmark)
	}

	data, err := EncodeSuite(benchmark)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}
