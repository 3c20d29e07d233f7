package bench

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// ComparisonResult pairs the two Benchmarks a Comparator judges. It carries
// the display names RunCompare resolved (explicit --python-names,
// falling back to the two runtime binaries' base names),
// plus a CorrelationID that ties the pair's log lines together across the
// two separate Master runs that produced them.
type ComparisonResult struct {
	CorrelationID string
	TaskName      string
	RefName       string
	ChangedName   string
	Ref           Benchmark
	Changed       Benchmark
}

// Comparator is the injected collaborator for the statistics/formatting
// layer this harness deliberately leaves out of scope: it receives two
// completed Benchmarks and renders whatever verdict the caller's comparator
// implementation produces. A caller that only wants the raw numbers can use
// defaultComparator.
type Comparator interface {
	Compare(result ComparisonResult) (string, error)
}

// defaultComparator renders a minimal total-rate comparison without any
// statistical layer: total loops over total duration, for each side.
type defaultComparator struct{}

func (defaultComparator) Compare(r ComparisonResult) (string, error) {
	refRate := rate(r.Ref)
	changedRate := rate(r.Changed)

	return fmt.Sprintf("%s: %s %.2f ops/s -> %s %.2f ops/s", r.TaskName, r.RefName, refRate, r.ChangedName, changedRate), nil
}

func rate(b Benchmark) float64 {
	total := b.TotalDuration()
	if total == 0 {
		return 0
	}

	return float64(b.TotalLoops()) / total
}

// RunCompare runs the full task registry to completion once under
// Policy.RuntimePath (the reference) and once under Policy.CompareTo (the
// changed binary), then hands every matching pair of Benchmarks to cmp.
func RunCompare(ctx context.Context, base *Master, cmp Comparator) ([]string, error) {
	runID := uuid.NewString()
	base.Logger.Info("compare-to run %s: %s vs %s", runID, base.Policy.RuntimePath, base.Policy.CompareTo)

	refName, changedName := displayNames(base.Policy)

	refPolicy := *base.Policy
	refMaster := &Master{Policy: &refPolicy, Registry: base.Registry, Logger: base.Logger, ProgramArgs: base.ProgramArgs}

	refResults, err := refMaster.RunAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("bench: reference run failed: %w", err)
	}

	changedPolicy := *base.Policy
	changedPolicy.RuntimePath = base.Policy.CompareTo
	changedPolicy.CompareTo = ""
	changedMaster := &Master{Policy: &changedPolicy, Registry: base.Registry, Logger: base.Logger, ProgramArgs: base.ProgramArgs}

	changedResults, err := changedMaster.RunAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("bench: changed run failed: %w", err)
	}

	if len(refResults) != len(changedResults) {
		return nil, fmt.Errorf("bench: reference and changed runs produced different task counts (%d vs %d)", len(refResults), len(changedResults))
	}

	lines := make([]string, 0, len(refResults))

	for i, ref := range refResults {
		result := ComparisonResult{
			CorrelationID: runID,
			TaskName:      ref.Name,
			RefName:       refName,
			ChangedName:   changedName,
			Ref:           ref,
			Changed:       changedResults[i],
		}

		line, err := cmp.Compare(result)
		if err != nil {
			return nil, fmt.Errorf("bench: comparator failed for %q: %w", ref.Name, err)
		}

		lines = append(lines, line)
	}

	return lines, nil
}

// displayNames resolves the RefName/ChangedName pair for a compare-to run:
// the explicit --python-names override, or else the two runtime
// binaries' base names, matching pyperf's derivation when the user
// didn't ask for custom labels.
func displayNames(policy *Policy) (ref, changed string) {
	if policy.RefName != "" && policy.ChangedName != "" {
		return policy.RefName, policy.ChangedName
	}

	return filepath.Base(policy.RuntimePath), filepath.Base(policy.CompareTo)
}
