package bench

import "testing"

func TestParseCPUList(t *testing.T) {
	cpus, err := parseCPUList("0,2-5,7")
	if err != nil {
		t.Fatalf("parseCPUList() error = %v", err)
	}

	want := []int{0, 2, 3, 4, 5, 7}
	if len(cpus) != len(want) {
		t.Fatalf("parseCPUList() = %v, want %v", cpus, want)
	}

	for i, c := range want {
		if cpus[i] != c {
			t.Errorf("parseCPUList()[%d] = %d, want %d", i, cpus[i], c)
		}
	}
}

func TestParseCPUListInvalid(t *testing.T) {
	cases := []string{"", "a-b", "3-1", "x"}
	for _, s := range cases {
		if _, err := parseCPUList(s); err == nil {
			t.Errorf("parseCPUList(%q) expected error, got nil", s)
		}
	}
}

func TestFormatCPUListRoundTrip(t *testing.T) {
	s := "0,2-5,7"
	cpus, err := parseCPUList(s)
	if err != nil {
		t.Fatalf("parseCPUList() error = %v", err)
	}

	got := formatCPUList(cpus)
	if got != s {
		t.Errorf("formatCPUList() = %q, want %q", got, s)
	}
}

func TestFormatCPUListUnsorted(t *testing.T) {
	got := formatCPUList([]int{5, 1, 0, 2})
	want := "0-2,5"
	if got != want {
		t.Errorf("formatCPUList() = %q, want %q", got, want)
	}
}

func TestParseRuntimeNames(t *testing.T) {
	ref, changed, err := parseRuntimeNames("before:after")
	if err != nil {
		t.Fatalf("parseRuntimeNames() error = %v", err)
	}

	if ref != "before" || changed != "after" {
		t.Errorf("parseRuntimeNames() = (%q, %q), want (before, after)", ref, changed)
	}
}

func TestParseRuntimeNamesInvalid(t *testing.T) {
	cases := []string{"", "noColon", ":after", "before:", "a:b:c"}
	for _, s := range cases {
		if _, _, err := parseRuntimeNames(s); err == nil {
			t.Errorf("parseRuntimeNames(%q) expected error, got nil", s)
		}
	}
}
