package bench

import (
	"bytes"
	"strings"
	"testing"
)

func exampleBenchmark() Benchmark {
	return Benchmark{
		Name: "example",
		Runs: []Run{
			{
				Warmups: []Sample{{Kind: WarmupSample, Loops: 10, Duration: 0.1}},
				Values: []Sample{
					{Kind: ValueSample, Loops: 10, Duration: 0.1},
					{Kind: ValueSample, Loops: 10, Duration: 0.2},
				},
			},
		},
	}
}

func TestPrintDump(t *testing.T) {
	var buf bytes.Buffer
	printDump(&buf, exampleBenchmark())

	out := buf.String()
	if !strings.Contains(out, "example") || !strings.Contains(out, "warmup:") || !strings.Contains(out, "value:") {
		t.Errorf("printDump() = %q", out)
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, exampleBenchmark())

	out := buf.String()
	if !strings.Contains(out, "2 samples") {
		t.Errorf("printStats() = %q, want sample count", out)
	}
}

func TestPrintStatsHandlesNoSamples(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, Benchmark{Name: "empty"})

	if !strings.Contains(buf.String(), "no value samples") {
		t.Errorf("printStats() = %q", buf.String())
	}
}

func TestPrintHistogram(t *testing.T) {
	var buf bytes.Buffer
	printHistogram(&buf, exampleBenchmark())

	if !strings.Contains(buf.String(), "histogram") {
		t.Errorf("printHistogram() = %q", buf.String())
	}
}

func TestPrintMetadataSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printMetadata(&buf, Benchmark{Name: "empty"})

	if buf.Len() != 0 {
		t.Errorf("printMetadata() wrote %q for empty metadata, want nothing", buf.String())
	}
}
