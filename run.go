package bench

import (
	"encoding/json"
	"fmt"
)

// Sample is one measured or calibration data point inside a Run.
//
// A ValueSample/WarmupSample carries Loops, InnerLoops and Duration; a
// CalibrationSample carries only Loops (Duration is the zero value and is
// omitted from the wire format).
type Sample struct {
	Kind       SampleKind `json:"kind"`
	Loops      uint64     `json:"loops"`
	InnerLoops uint64     `json:"inner_loops,omitempty"`
	Duration   float64    `json:"duration_seconds,omitempty"`
}

// Run is an immutable record produced by one worker execution of one task.
type Run struct {
	Warmups  []Sample               `json:"warmups,omitempty"`
	Values   []Sample               `json:"values,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// IsCalibration reports whether this Run is a calibration-only Run, i.e. it
// carries exactly one CalibrationSample and no value samples.
func (r *Run) IsCalibration() bool {
	return len(r.Values) == 0 && len(r.Warmups) == 1 && r.Warmups[0].Kind == CalibrationSample
}

// CalibratedLoops returns the loop count chosen by a calibration Run. It
// panics if called on a non-calibration Run; callers must check
// IsCalibration first.
func (r *Run) CalibratedLoops() uint64 {
	if !r.IsCalibration() {
		panic("bench: CalibratedLoops called on a non-calibration Run")
	}

	return r.Warmups[0].Loops
}

// NewCalibrationRun builds the single-sample Run a calibration worker emits.
func NewCalibrationRun(loops uint64, metadata map[string]interface{}) Run {
	return Run{
		Warmups: []Sample{{Kind: CalibrationSample, Loops: loops}},
		Metadata: metadata,
	}
}

// Benchmark is a named aggregate of Runs sharing a task identity.
type Benchmark struct {
	Name     string                 `json:"name"`
	Unit     string                 `json:"unit,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Runs     []Run                  `json:"runs"`
}

// AddRun appends a worker's Run to this Benchmark, checking that its
// metadata is compatible (same unit, same inner_loops) with the existing
// Runs.
func (b *Benchmark) AddRun(run Run) error {
	if len(b.Runs) == 0 {
		b.Runs = append(b.Runs, run)
		return nil
	}

	if err := b.checkCompatible(run); err != nil {
		return err
	}

	b.Runs = append(b.Runs, run)

	return nil
}

func (b *Benchmark) checkCompatible(run Run) error {
	wantInner := sampleInnerLoops(b.Runs[0])
	gotInner := sampleInnerLoops(run)
	if wantInner != gotInner {
		return fmt.Errorf("bench: incompatible run for %q: inner_loops %d != %d", b.Name, gotInner, wantInner)
	}

	return nil
}

func sampleInnerLoops(r Run) uint64 {
	for _, s := range r.Values {
		if s.InnerLoops != 0 {
			return s.InnerLoops
		}
	}
	for _, s := range r.Warmups {
		if s.InnerLoops != 0 {
			return s.InnerLoops
		}
	}

	return 0
}

// TotalLoops returns the sum of loops across all value samples in all Runs,
// used to compute a rate once an aggregated Benchmark is complete.
func (b *Benchmark) TotalLoops() uint64 {
	var total uint64
	for _, run := range b.Runs {
		for _, s := range run.Values {
			total += s.Loops
		}
	}

	return total
}

// TotalDuration returns the sum of durations across all value samples.
func (b *Benchmark) TotalDuration() float64 {
	var total float64
	for _, run := range b.Runs {
		for _, s := range run.Values {
			total += s.Duration
		}
	}

	return total
}

// Suite is the set of Benchmarks produced by one worker invocation. In this
// harness a worker emits exactly one Benchmark per Suite; a Suite carrying
// any other number of Benchmarks is a WorkerProtocolError in the Master.
type Suite struct {
	Benchmarks []Benchmark `json:"benchmarks"`
}

// EncodeSuite serializes a one-Benchmark Suite to the pipe wire format: a
// single UTF-8 JSON document, no framing.
func EncodeSuite(bench Benchmark) ([]byte, error) {
	suite := Suite{Benchmarks: []Benchmark{bench}}

	data, err := json.Marshal(&suite)
	if err != nil {
		return nil, fmt.Errorf("bench: failed to encode suite: %w", err)
	}

	return data, nil
}

// DecodeSuite parses the pipe wire format produced by EncodeSuite and
// enforces the "exactly one Benchmark" invariant.
func DecodeSuite(data []byte) (Benchmark, error) {
	if len(data) == 0 {
		return Benchmark{}, fmt.Errorf("bench: empty suite payload")
	}

	var suite Suite
	if err := json.Unmarshal(data, &suite); err != nil {
		return Benchmark{}, fmt.Errorf("bench: malformed suite JSON: %w", err)
	}

	if len(suite.Benchmarks) != 1 {
		return Benchmark{}, fmt.Errorf("bench: worker produced %d benchmarks instead of 1", len(suite.Benchmarks))
	}

	return suite.Benchmarks[0], nil
}
