// Command procbench-demo is a minimal example of a program built on the
// bench package: it registers a couple of toy tasks and hands control to
// bench.Main, which drives the Master/Worker split depending on how the
// binary was invoked.
package main

import (
	"os"
	"strings"

	"github.com/acronis/perfkit/procbench"
)

func main() {
	var registry bench.Registry

	if err := registry.BenchFunc("string_concat", func(loops uint64) error {
		for i := uint64(0); i < loops; i++ {
			_ = strings.Join([]string{"a", "b", "c"}, "-")
		}

		return nil
	}, nil); err != nil {
		panic(err)
	}

	if err := registry.BenchFunc("map_insert", func(loops uint64) error {
		for i := uint64(0); i < loops; i++ {
			m := make(map[int]int, 8)
			for j := 0; j < 8; j++ {
				m[j] = j
			}
		}

		return nil
	}, nil); err != nil {
		panic(err)
	}

	os.Exit(bench.Main(&registry))
}
