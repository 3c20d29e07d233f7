package bench

import (
	"fmt"
	"io"
	"os"
)

// pipeChildFD is the file descriptor number a single-entry cmd.ExtraFiles
// slot receives inside the child process: Go's os/exec always places extra
// files starting at fd 3 (after stdin/stdout/stderr), so a Master that
// passes exactly one write end always tells the worker "--pipe=3".
const pipeChildFD = 3

// createPipe opens the anonymous unidirectional pipe a worker reports its
// result over: the write end is handed to the child (via cmd.ExtraFiles,
// which arranges OS-level inheritance on both POSIX and Windows), the read
// end stays with the Master.
func createPipe() (read *os.File, write *os.File, err error) {
	read, write, err = os.Pipe()
	if err != nil {
		return nil, nil, fmt.Errorf("bench: failed to create pipe: %w", err)
	}

	return read, write, nil
}

// readSuiteFromPipe reads the Master's end of the pipe to EOF and decodes
// the single JSON Suite document the worker wrote.
func readSuiteFromPipe(r io.Reader) (Benchmark, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Benchmark{}, fmt.Errorf("bench: failed to read worker pipe: %w", err)
	}

	return DecodeSuite(data)
}

// writeSuiteToPipe writes the worker's single Benchmark suite to w and
// closes it. An EPIPE (reader gone — the Master died early) is swallowed
// silently; every other I/O error surfaces.
func writeSuiteToPipe(w *os.File, bench Benchmark) error {
	data, err := EncodeSuite(bench)
	if err != nil {
		return err
	}

	_, writeErr := w.Write(data)
	closeErr := w.Close()

	if writeErr != nil && !isBrokenPipeErr(writeErr) {
		return fmt.Errorf("bench: failed to write suite to pipe: %w", writeErr)
	}

	if closeErr != nil && !isBrokenPipeErr(closeErr) {
		return fmt.Errorf("bench: failed to close pipe: %w", closeErr)
	}

	return nil
}
