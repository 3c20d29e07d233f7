package bench

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Policy is the resolved, frozen configuration for one orchestration. It is
// produced once per process by resolvePolicy and never mutated afterwards,
// except for Loops (calibration feedback around a single task's run),
// AffinityCPUs (auto-detected isolated CPUs fed back so workers inherit
// them), RuntimePath (filled in by Main with the running executable when
// --python is not given) and WorkerTask (defaulted to 0 by a worker with a
// single registered task).
type Policy struct {
	Processes         int
	Values            int
	Warmups           int
	Loops             uint64 // 0 means "calibrate"
	MinTime           float64
	MaxTime           float64
	AffinityCPUs      []int // nil means "not pinned / auto-detect"
	AffinityExplicit  bool  // true if the user passed --affinity
	TrackMemory       bool
	Tracemalloc       bool
	Verbose           int
	Quiet             bool
	PipeFD            int // 0 means "not a worker invocation via pipe"
	InheritEnviron    []string
	Locale            bool
	Worker            bool
	WorkerTask        *int // nil means "task 0", accepted only when exactly one task is registered
	Calibrate         bool
	Dump              bool
	ShowMetadata      bool
	Histogram         bool
	Stats             bool
	Output            string
	Append            string
	RuntimePath       string // --python equivalent: path to the runtime under test
	CompareTo         string // --compare-to: changed runtime path, compared against RuntimePath
	RefName           string
	ChangedName       string
}

// RuntimeCapabilities describes the one JIT-awareness bit the Policy
// Resolver consumes, modeled as an injected capability flag rather than
// baked-in interpreter detection.
type RuntimeCapabilities struct {
	HasJIT bool
}

// ConfigError is a fatal, user-facing configuration mistake: conflicting
// flags, an existing --output file, a malformed CPU list, and so on. The
// Master turns every ConfigError into a single-line diagnostic and a
// nonzero exit, never a stack trace.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// resolvePolicy turns raw parsed flags plus Runner construction defaults
// into a frozen Policy, applying its rules in a fixed, documented order.
func resolvePolicy(opts *Options, caps RuntimeCapabilities) (*Policy, error) {
	p := &Policy{
		Processes:      opts.Processes,
		Values:         opts.Values,
		Warmups:        int(opts.Warmups),
		Loops:          uint64(opts.Loops),
		MinTime:        opts.MinTime,
		MaxTime:        defaultMaxTime,
		TrackMemory:    opts.TrackMemory,
		Tracemalloc:    opts.Tracemalloc,
		Verbose:        len(opts.Verbose),
		Quiet:          opts.Quiet,
		PipeFD:         opts.Pipe,
		InheritEnviron: opts.InheritEnviron,
		Locale:         !opts.NoLocale,
		Worker:         opts.Worker,
		Calibrate:      opts.Calibrate,
		Dump:           opts.Dump,
		ShowMetadata:   opts.Metadata,
		Histogram:      opts.Histogram,
		Stats:          opts.Stats,
		Output:         opts.Output,
		Append:         opts.Append,
		RuntimePath:    opts.Runtime,
		CompareTo:      opts.CompareTo,
	}

	if opts.WorkerTask != nil {
		task := int(*opts.WorkerTask)
		p.WorkerTask = &task
	}

	if opts.TrackMemory && opts.Tracemalloc {
		return nil, configErrorf("--track-memory and --tracemalloc options are mutually exclusive")
	}

	// Rule 11: the runtime-dependent defaults (jit vs non-jit) apply only
	// when the CLI didn't override values/warmups/processes. Python's
	// argparser bakes these same JIT-aware numbers in as its --processes/
	// --values defaults, so rules 3-4 below scale off the identical values
	// regardless of what the user actually passed.
	jitDefaults := resolveJITDefaults(caps, p.MinTime)
	applyRuntimeDefaults(p, opts, jitDefaults)

	// Rule 1-2: pipe forces quiet; quiet forces non-verbose.
	if p.PipeFD != 0 {
		p.Quiet = true
		p.Verbose = 0
	} else if p.Quiet {
		p.Verbose = 0
	}

	// Rule 3-5: rigorous/fast/debug-single-value, mutually exclusive,
	// checked in this priority order exactly like _process_args.
	switch {
	case opts.Rigorous:
		p.Processes = jitDefaults.Processes * 2
	case opts.Fast:
		p.Processes = maxInt(jitDefaults.Processes/2, 3)
		p.Values = maxInt(jitDefaults.Values*2/3, 2)
	case opts.DebugSingleValue:
		p.Processes = 1
		p.Warmups = 0
		p.Values = 1
		p.Loops = 1
		p.MinTime = debugSingleValueMinTime
	}

	// Rule 6: --calibrate requires --worker.
	if opts.Calibrate {
		if !opts.Worker {
			return nil, configErrorf("calibration can only be done in a worker process")
		}

		p.Loops = 0
		p.Warmups = 0
		p.Values = 0
	}

	// Rule 7: --worker-task requires --worker.
	if opts.WorkerTask != nil && !opts.Worker {
		return nil, configErrorf("--worker-task can only be used with --worker")
	}

	// Rule 8: existing --output file is fatal (append-after-first overrides
	// this in the Master once one benchmark has already been emitted; see
	// Master.emitBenchmark).
	if p.Output != "" {
		if _, err := os.Stat(p.Output); err == nil {
			return nil, configErrorf("the JSON file %q already exists", p.Output)
		}
	}

	// Rule 9: --compare-to is mutually exclusive with --output/--append.
	if p.CompareTo != "" {
		if p.Output != "" {
			return nil, configErrorf("--output option is incompatible with --compare-to option")
		}
		if p.Append != "" {
			return nil, configErrorf("--append option is incompatible with --compare-to option")
		}
	}

	// Rule 10: resolve executable paths to absolute paths.
	if p.RuntimePath != "" {
		abs, err := filepath.Abs(p.RuntimePath)
		if err != nil {
			return nil, configErrorf("failed to resolve runtime path %q: %v", p.RuntimePath, err)
		}
		p.RuntimePath = abs
	}
	if p.CompareTo != "" {
		abs, err := filepath.Abs(p.CompareTo)
		if err != nil {
			return nil, configErrorf("failed to resolve compare-to path %q: %v", p.CompareTo, err)
		}
		p.CompareTo = abs
	}

	if opts.Names != "" {
		ref, changed, err := parseRuntimeNames(opts.Names)
		if err != nil {
			return nil, err
		}
		p.RefName, p.ChangedName = ref, changed
	}

	if opts.Affinity != "" {
		cpus, err := parseCPUList(opts.Affinity)
		if err != nil {
			return nil, configErrorf("invalid --affinity value %q: %v", opts.Affinity, err)
		}
		p.AffinityCPUs = cpus
		p.AffinityExplicit = true
	}

	return p, nil
}

// jitDefaults are the runtime-capability-dependent defaults for
// values/warmups/processes, computed once and reused both as the actual
// default (when the CLI left a flag unset) and as the baseline rigorous/fast
// scale off of.
type jitDefaults struct {
	Values    int
	Warmups   int
	Processes int
}

func resolveJITDefaults(caps RuntimeCapabilities, minTime float64) jitDefaults {
	if caps.HasJIT {
		return jitDefaults{
			Values:    defaultValuesJIT,
			Warmups:   int(math.Ceil(1.0 / minTime)),
			Processes: defaultProcessesJIT,
		}
	}

	return jitDefaults{
		Values:    defaultValuesNoJIT,
		Warmups:   defaultWarmupsNoJIT,
		Processes: defaultProcessesNoJIT,
	}
}

func applyRuntimeDefaults(p *Policy, opts *Options, d jitDefaults) {
	if !opts.valuesSet {
		p.Values = d.Values
	}

	if !opts.warmupsSet {
		p.Warmups = d.Warmups
	}

	if !opts.processesSet {
		p.Processes = d.Processes
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
