package bench

import "testing"

func baseOptions() *Options {
	return &Options{
		MinTime: defaultMinTime,
	}
}

func TestResolvePolicyDefaultsNoJIT(t *testing.T) {
	p, err := resolvePolicy(baseOptions(), RuntimeCapabilities{HasJIT: false})
	if err != nil {
		t.Fatalf("resolvePolicy() error = %v", err)
	}

	if p.Processes != defaultProcessesNoJIT || p.Values != defaultValuesNoJIT || p.Warmups != defaultWarmupsNoJIT {
		t.Errorf("resolvePolicy() defaults = %+v", p)
	}
}

func TestResolvePolicyRigorousDoublesProcessesOnly(t *testing.T) {
	opts := baseOptions()
	opts.Rigorous = true

	p, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false})
	if err != nil {
		t.Fatalf("resolvePolicy() error = %v", err)
	}

	if p.Processes != defaultProcessesNoJIT*2 {
		t.Errorf("rigorous Processes = %d, want %d", p.Processes, defaultProcessesNoJIT*2)
	}

	if p.Values != defaultValuesNoJIT {
		t.Errorf("rigorous Values = %d, want unchanged %d", p.Values, defaultValuesNoJIT)
	}
}

func TestResolvePolicyFastScalesBothProcessesAndValues(t *testing.T) {
	opts := baseOptions()
	opts.Fast = true

	p, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false})
	if err != nil {
		t.Fatalf("resolvePolicy() error = %v", err)
	}

	wantProcesses := maxInt(defaultProcessesNoJIT/2, 3)
	wantValues := maxInt(defaultValuesNoJIT*2/3, 2)

	if p.Processes != wantProcesses {
		t.Errorf("fast Processes = %d, want %d", p.Processes, wantProcesses)
	}

	if p.Values != wantValues {
		t.Errorf("fast Values = %d, want %d", p.Values, wantValues)
	}
}

func TestResolvePolicyDebugSingleValue(t *testing.T) {
	opts := baseOptions()
	opts.DebugSingleValue = true

	p, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false})
	if err != nil {
		t.Fatalf("resolvePolicy() error = %v", err)
	}

	if p.Processes != 1 || p.Warmups != 0 || p.Values != 1 || p.Loops != 1 {
		t.Errorf("debug-single-value policy = %+v", p)
	}

	if p.MinTime != debugSingleValueMinTime {
		t.Errorf("debug-single-value MinTime = %v, want %v", p.MinTime, debugSingleValueMinTime)
	}
}

func TestResolvePolicyPipeForcesQuiet(t *testing.T) {
	opts := baseOptions()
	opts.Pipe = 3
	opts.Verbose = []bool{true, true}

	p, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false})
	if err != nil {
		t.Fatalf("resolvePolicy() error = %v", err)
	}

	if !p.Quiet || p.Verbose != 0 {
		t.Errorf("pipe policy Quiet=%v Verbose=%d, want true/0", p.Quiet, p.Verbose)
	}
}

func TestResolvePolicyCalibrateRequiresWorker(t *testing.T) {
	opts := baseOptions()
	opts.Calibrate = true

	if _, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false}); err == nil {
		t.Errorf("resolvePolicy() expected error for --calibrate without --worker")
	}
}

func TestResolvePolicyWorkerTaskRequiresWorker(t *testing.T) {
	opts := baseOptions()
	id := workerTaskFlag(2)
	opts.WorkerTask = &id

	if _, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false}); err == nil {
		t.Errorf("resolvePolicy() expected error for --worker-task without --worker")
	}
}

func TestResolvePolicyCompareToExcludesOutput(t *testing.T) {
	opts := baseOptions()
	opts.CompareTo = "/tmp/other-runtime"
	opts.Output = "/tmp/out.json"

	if _, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false}); err == nil {
		t.Errorf("resolvePolicy() expected error combining --compare-to and --output")
	}
}

func TestResolvePolicyAffinityParsed(t *testing.T) {
	opts := baseOptions()
	opts.Affinity = "0,2-3"

	p, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false})
	if err != nil {
		t.Fatalf("resolvePolicy() error = %v", err)
	}

	if !p.AffinityExplicit {
		t.Errorf("resolvePolicy() AffinityExplicit = false, want true")
	}

	want := []int{0, 2, 3}
	if len(p.AffinityCPUs) != len(want) {
		t.Fatalf("resolvePolicy() AffinityCPUs = %v, want %v", p.AffinityCPUs, want)
	}
}

func TestResolvePolicyRejectsInvalidAffinity(t *testing.T) {
	opts := baseOptions()
	opts.Affinity = "not-a-cpu-list"

	if _, err := resolvePolicy(opts, RuntimeCapabilities{HasJIT: false}); err == nil {
		t.Errorf("resolvePolicy() expected error for invalid --affinity")
	}
}

func TestResolveJITDefaultsWarmupsFromMinTime(t *testing.T) {
	d := resolveJITDefaults(RuntimeCapabilities{HasJIT: true}, 0.25)

	if d.Warmups != 4 {
		t.Errorf("resolveJITDefaults() Warmups = %d, want 4", d.Warmups)
	}

	if d.Values != defaultValuesJIT || d.Processes != defaultProcessesJIT {
		t.Errorf("resolveJITDefaults() = %+v", d)
	}
}
