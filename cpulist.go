package bench

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parseCPUList parses the CPU list syntax used by --affinity: comma-separated
// entries, each either "N" or "A-B" inclusive, e.g. "0,2-5,7".
func parseCPUList(s string) ([]int, error) {
	var cpus []int

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if dash := strings.IndexByte(entry, '-'); dash >= 0 {
			lo, err := strconv.Atoi(strings.TrimSpace(entry[:dash]))
			if err != nil {
				return nil, fmt.Errorf("invalid CPU range %q: %w", entry, err)
			}

			hi, err := strconv.Atoi(strings.TrimSpace(entry[dash+1:]))
			if err != nil {
				return nil, fmt.Errorf("invalid CPU range %q: %w", entry, err)
			}

			if hi < lo {
				return nil, fmt.Errorf("invalid CPU range %q: end before start", entry)
			}

			for cpu := lo; cpu <= hi; cpu++ {
				cpus = append(cpus, cpu)
			}

			continue
		}

		cpu, err := strconv.Atoi(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid CPU id %q: %w", entry, err)
		}

		cpus = append(cpus, cpu)
	}

	if len(cpus) == 0 {
		return nil, fmt.Errorf("empty CPU list")
	}

	return cpus, nil
}

// formatCPUList is the inverse of parseCPUList: it collapses consecutive
// runs into "A-B" ranges, matching pyperf's format_cpu_list so
// --affinity=<auto-detected> round-trips through a worker command line the
// same way a user-supplied --affinity would.
func formatCPUList(cpus []int) string {
	if len(cpus) == 0 {
		return ""
	}

	sorted := append([]int(nil), cpus...)
	sortInts(sorted)

	var parts []string

	start := sorted[0]
	prev := sorted[0]

	flush := func(end int) {
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, end))
		}
	}

	for _, cpu := range sorted[1:] {
		if cpu == prev+1 {
			prev = cpu
			continue
		}

		flush(prev)
		start = cpu
		prev = cpu
	}

	flush(prev)

	return strings.Join(parts, ",")
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// getIsolatedCPUs reads the set of CPUs the Linux kernel was configured to
// exclude from the general scheduler (/sys/devices/system/cpu/isolated). It
// returns nil, nil when no isolated CPUs are configured or the file can't be
// does not exist — that is not an error, it just means "don't auto-pin". Any
// other read failure is returned as an error.
func getIsolatedCPUs() ([]int, error) {
	data, err := os.ReadFile("/sys/devices/system/cpu/isolated")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("bench: failed to read isolated CPU list: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	return parseCPUList(trimmed)
}

// parseRuntimeNames parses the --python-names REF:CHANGED grammar used by
// --compare-to runs: exactly one colon, both parts non-empty.
func parseRuntimeNames(s string) (ref, changed string, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], ":") {
		return "", "", configErrorf("syntax for --python-names is REF_NAME:CHANGED_NAME, got %q", s)
	}

	return parts[0], parts[1], nil
}
