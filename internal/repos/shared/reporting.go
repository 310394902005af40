package shared

import (
	"fmt"
	"io"
	"os"
)

// Reporter emits formatted per-directory outcome lines to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
	// Err returns the first write failure, if any.
	Err() error
}

// WriterReporter writes report lines to an io.Writer and remembers the first write failure.
// Lines after a failure are dropped.
type WriterReporter struct {
	writer     io.Writer
	writeError error
}

// NewWriterReporter constructs a WriterReporter, defaulting to standard output.
func NewWriterReporter(writer io.Writer) *WriterReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &WriterReporter{writer: writer}
}

// Printf formats a report line.
func (reporter *WriterReporter) Printf(format string, args ...any) {
	if reporter.writeError != nil {
		return
	}
	_, reporter.writeError = fmt.Fprintf(reporter.writer, format, args...)
}

// Err reports the first write failure.
func (reporter *WriterReporter) Err() error {
	return reporter.writeError
}
