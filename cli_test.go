package bench

import "testing"

func TestParseOptionsTracksExplicitFlags(t *testing.T) {
	opts, rest, err := ParseOptions("procbench-test", []string{"--values=5", "extra-arg"})
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}

	if opts.Values != 5 {
		t.Errorf("ParseOptions() Values = %d, want 5", opts.Values)
	}

	if !opts.valuesSet {
		t.Errorf("ParseOptions() valuesSet = false, want true")
	}

	if opts.warmupsSet || opts.processesSet {
		t.Errorf("ParseOptions() warmupsSet/processesSet should remain false when unset")
	}

	if len(rest) != 1 || rest[0] != "extra-arg" {
		t.Errorf("ParseOptions() rest = %v, want [extra-arg]", rest)
	}
}

func TestParseOptionsDefaults(t *testing.T) {
	opts, _, err := ParseOptions("procbench-test", nil)
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}

	if opts.MinTime != defaultMinTime {
		t.Errorf("ParseOptions() MinTime = %v, want %v", opts.MinTime, defaultMinTime)
	}

	if opts.Worker || opts.Calibrate || opts.Rigorous || opts.Fast {
		t.Errorf("ParseOptions() unexpected truthy boolean default: %+v", opts)
	}
}

func TestParseOptionsRejectsUnknownFlag(t *testing.T) {
	if _, _, err := ParseOptions("procbench-test", []string{"--not-a-real-flag"}); err == nil {
		t.Errorf("ParseOptions() expected error for unknown flag")
	}
}

func TestParseOptionsAcceptsPowerOfSyntax(t *testing.T) {
	opts, _, err := ParseOptions("procbench-test", []string{"--loops=2^10", "--warmups=2^3", "--worker-task=1^4"})
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}

	if opts.Loops != 1024 {
		t.Errorf("ParseOptions() Loops = %d, want 1024", opts.Loops)
	}

	if opts.Warmups != 8 {
		t.Errorf("ParseOptions() Warmups = %d, want 8", opts.Warmups)
	}

	if opts.WorkerTask == nil || *opts.WorkerTask != 1 {
		t.Errorf("ParseOptions() WorkerTask = %v, want 1", opts.WorkerTask)
	}
}

func TestParseOptionsPlainIntegersStillWork(t *testing.T) {
	opts, _, err := ParseOptions("procbench-test", []string{"--loops=5", "--warmups=2"})
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}

	if opts.Loops != 5 || opts.Warmups != 2 {
		t.Errorf("ParseOptions() Loops/Warmups = %d/%d, want 5/2", opts.Loops, opts.Warmups)
	}
}

func TestParseLoopsFlagRejectsNegative(t *testing.T) {
	if _, err := parseLoopsFlag("-1"); err == nil {
		t.Errorf("parseLoopsFlag(-1) expected error")
	}

	if _, err := parseLoopsFlag("2^-1"); err == nil {
		t.Errorf("parseLoopsFlag(2^-1) expected error")
	}
}
