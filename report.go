package bench

import (
	"fmt"
	"io"
	"sort"
)

// printDump renders every sample of every Run in a Benchmark, the plain
// listing behind --dump.
func printDump(w io.Writer, b Benchmark) {
	fmt.Fprintf(w, "%s\n", b.Name)

	for i, run := range b.Runs {
		fmt.Fprintf(w, "  run %d:\n", i+1)

		for _, s := range run.Warmups {
			fmt.Fprintf(w, "    warmup: loops=%d duration=%gs\n", s.Loops, s.Duration)
		}

		for _, s := range run.Values {
			fmt.Fprintf(w, "    value: loops=%d duration=%gs\n", s.Loops, s.Duration)
		}
	}
}

// printMetadata renders a Benchmark's metadata map, behind --metadata.
func printMetadata(w io.Writer, b Benchmark) {
	if len(b.Metadata) == 0 {
		return
	}

	fmt.Fprintf(w, "%s metadata:\n", b.Name)
	fmt.Fprint(w, DumpRecursive(b.Metadata, "  "))
	fmt.Fprintln(w)
}

// valueDurations collects every value sample's duration divided by its
// loop count, i.e. the per-iteration time each sample represents.
func valueDurations(b Benchmark) []float64 {
	var durations []float64

	for _, run := range b.Runs {
		for _, s := range run.Values {
			if s.Loops == 0 {
				continue
			}

			durations = append(durations, s.Duration/float64(s.Loops))
		}
	}

	return durations
}

// printStats renders the minimal min/max/mean statistics behind --stats.
// The richer statistical layer (median, stddev, outlier detection) is left
// to an external tool consuming --output's JSON.
func printStats(w io.Writer, b Benchmark) {
	durations := valueDurations(b)
	if len(durations) == 0 {
		fmt.Fprintf(w, "%s: no value samples\n", b.Name)
		return
	}

	sort.Float64s(durations)

	var sum float64
	for _, d := range durations {
		sum += d
	}

	mean := sum / float64(len(durations))

	fmt.Fprintf(w, "%s: %d samples, min=%gs max=%gs mean=%gs\n", b.Name, len(durations), durations[0], durations[len(durations)-1], mean)
}

// printHistogram renders a fixed-width ASCII histogram of per-iteration
// durations behind --hist.
func printHistogram(w io.Writer, b Benchmark) {
	durations := valueDurations(b)
	if len(durations) == 0 {
		return
	}

	sort.Float64s(durations)

	const buckets = 20

	lo, hi := durations[0], durations[len(durations)-1]
	width := hi - lo

	counts := make([]int, buckets)

	for _, d := range durations {
		idx := 0
		if width > 0 {
			idx = int((d - lo) / width * float64(buckets-1))
		}

		counts[idx]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	fmt.Fprintf(w, "%s histogram (%gs - %gs):\n", b.Name, lo, hi)

	for i, c := range counts {
		bar := ""
		if maxCount > 0 {
			barLen := c * 50 / maxCount
			bar = repeatRune('#', barLen)
		}

		fmt.Fprintf(w, "  %2d %s (%d)\n", i, bar, c)
	}
}
