package bench

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
)

// parseLoopsFlag parses the value syntax shared by --loops, --warmups, and
// --worker-task: a plain non-negative integer, or pyperf's "base^exp"
// power-of shorthand (e.g. "2^10" means 1024), so a caller can write a
// round loop count without doing the exponent math by hand.
func parseLoopsFlag(value string) (uint64, error) {
	if idx := strings.IndexByte(value, '^'); idx >= 0 {
		base, err := strconv.ParseInt(value[:idx], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid base in %q: %w", value, err)
		}

		exp, err := strconv.ParseInt(value[idx+1:], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid exponent in %q: %w", value, err)
		}

		if exp < 0 {
			return 0, fmt.Errorf("value must be >= 0: %q", value)
		}

		result := math.Pow(float64(base), float64(exp))
		if result < 0 {
			return 0, fmt.Errorf("value must be >= 0: %q", value)
		}

		return uint64(result), nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", value, err)
	}

	if n < 0 {
		return 0, fmt.Errorf("value must be >= 0: %q", value)
	}

	return uint64(n), nil
}

// loopsFlag is a uint64 CLI value accepting parseLoopsFlag's syntax; used
// for --loops.
type loopsFlag uint64

func (f *loopsFlag) UnmarshalFlag(value string) error {
	n, err := parseLoopsFlag(value)
	if err != nil {
		return err
	}

	*f = loopsFlag(n)

	return nil
}

// warmupsFlag is an int CLI value accepting parseLoopsFlag's syntax; used
// for --warmups.
type warmupsFlag int

func (f *warmupsFlag) UnmarshalFlag(value string) error {
	n, err := parseLoopsFlag(value)
	if err != nil {
		return err
	}

	*f = warmupsFlag(n)

	return nil
}

// workerTaskFlag is an int CLI value accepting parseLoopsFlag's syntax;
// used for --worker-task.
type workerTaskFlag int

func (f *workerTaskFlag) UnmarshalFlag(value string) error {
	n, err := parseLoopsFlag(value)
	if err != nil {
		return err
	}

	*f = workerTaskFlag(n)

	return nil
}

// Options is the full CLI flag surface, parsed by go-flags the same way
// CommonOpts/DatabaseOpts are parsed elsewhere in this family of tools.
type Options struct {
	Rigorous         bool `long:"rigorous" description:"spend longer running benchmarks to improve accuracy: runs twice as many worker processes"`
	Fast             bool `long:"fast" description:"get rough, quick results: fewer worker processes and fewer values"`
	DebugSingleValue bool `long:"debug-single-value" description:"run the benchmark only once, for testing the benchmark itself"`

	Processes int         `short:"p" long:"processes" description:"number of worker processes to run the benchmark in" default:"0"`
	Values    int         `short:"n" long:"values" description:"number of timed samples per worker process" default:"0"`
	Warmups   warmupsFlag `short:"w" long:"warmups" description:"number of warmup samples per worker process, before timed samples; accepts base^exp syntax" default:"0"`
	Loops     loopsFlag   `short:"l" long:"loops" description:"number of loops per sample; 0 means calibrate automatically; accepts base^exp syntax" default:"0"`

	Verbose []bool `short:"v" long:"verbose" description:"enable verbose output (-v info, -vv debug)"`
	Quiet   bool   `short:"q" long:"quiet" description:"only display the benchmark result"`

	Pipe    int     `long:"pipe" description:"write the worker's result as a Suite on file descriptor PIPE rather than stdout" default:"0"`
	Output  string  `short:"o" long:"output" description:"write the final Suite as JSON to this file; fails if it already exists"`
	Append  string  `long:"append" description:"append the final Suite as JSON to this file, creating it if needed"`
	MinTime float64 `long:"min-time" description:"minimum duration in seconds of a single value, used for calibration" default:"0.1"`

	Worker     bool            `long:"worker" description:"act as a worker process, measuring exactly one sample set and reporting it on the pipe"`
	WorkerTask *workerTaskFlag `long:"worker-task" description:"index into the task registry of the single task a worker process should run; accepts base^exp syntax"`
	Calibrate  bool            `long:"calibrate" description:"calibrate the number of loops instead of running timed samples; requires --worker"`

	Dump      bool `short:"d" long:"dump" description:"display the benchmark run results"`
	Metadata  bool `short:"m" long:"metadata" description:"show metadata"`
	Histogram bool `short:"g" long:"hist" description:"display an histogram of samples"`
	Stats     bool `short:"t" long:"stats" description:"display statistics (min, max, mean, ...)"`

	Affinity string `long:"affinity" description:"pin worker processes to the given CPUs, e.g. \"0,2-5,7\"; when not given, auto-detect isolated CPUs"`

	InheritEnviron []string `long:"inherit-environ" description:"comma-separated list of environment variables to inherit in worker processes" default:""`
	NoLocale       bool     `long:"no-locale" description:"do not inherit LANG/LC_* variables in worker processes"`

	TrackMemory bool `long:"track-memory" description:"measure the worker's peak RSS memory usage"`
	Tracemalloc bool `long:"tracemalloc" description:"measure the worker's peak memory usage; sampled from RSS, the same as --track-memory"`

	Runtime   string `long:"python" description:"path to the runtime binary to re-exec as a worker process" default:""`
	CompareTo string `long:"compare-to" description:"path to a second runtime binary; run the benchmark under both and compare"`
	Names     string `long:"python-names" description:"REF:CHANGED display names for --compare-to, e.g. \"before:after\""`

	valuesSet    bool
	warmupsSet   bool
	processesSet bool
}

// ParseOptions parses argv into an Options, wrapping go-flags.Parse the way
// CLI.Parse does elsewhere. It records which of --values/--warmups/--processes
// the user actually passed, since resolvePolicy's JIT-aware defaults only
// apply to flags left unset.
func ParseOptions(applicationName string, argv []string) (*Options, []string, error) {
	opts := &Options{}

	parser := flags.NewNamedParser(applicationName, flags.Default)

	if _, err := parser.AddGroup("Options", "procbench options", opts); err != nil {
		return nil, nil, fmt.Errorf("bench: failed to register flags: %w", err)
	}

	rest, err := parser.ParseArgs(argv)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && errors.Is(flagsErr.Type, flags.ErrHelp) {
			os.Exit(0)
		}

		return nil, nil, err
	}

	// A value filled in from a default tag also counts as set for go-flags,
	// so IsSetDefault is checked to keep only what the user passed.
	if opt := parser.FindOptionByLongName("values"); opt != nil {
		opts.valuesSet = opt.IsSet() && !opt.IsSetDefault()
	}
	if opt := parser.FindOptionByLongName("warmups"); opt != nil {
		opts.warmupsSet = opt.IsSet() && !opt.IsSetDefault()
	}
	if opt := parser.FindOptionByLongName("processes"); opt != nil {
		opts.processesSet = opt.IsSet() && !opt.IsSetDefault()
	}

	return opts, rest, nil
}
