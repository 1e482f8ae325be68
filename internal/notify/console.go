package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// ConsoleSink writes notices to a terminal-style writer with color-coded
// severity prefixes.
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink creates a sink writing to stdout.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: color.Output}
}

// NewConsoleSinkTo creates a sink writing to w.
func NewConsoleSinkTo(w io.Writer) *ConsoleSink {
	return &ConsoleSink{out: w}
}

// Name returns the sink identifier.
func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Send(_ context.Context, notice types.Notice) error {
	var prefix string
	switch notice.Level {
	case types.NoticeLevelError:
		prefix = color.RedString("[ERROR]")
	case types.NoticeLevelWarning:
		prefix = color.YellowString("[WARN]")
	default:
		prefix = color.CyanString("[INFO]")
	}

	var err error
	if notice.Operation != "" {
		_, err = fmt.Fprintf(s.out, "%s [%s] %s\n", prefix, notice.Operation, notice.Message)
	} else {
		_, err = fmt.Fprintf(s.out, "%s %s\n", prefix, notice.Message)
	}
	return err
}
