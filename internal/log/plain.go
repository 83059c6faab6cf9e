package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

var _ Sink = (*plainSink)(nil)

var levelColors = map[Level]string{
	Trace: "\x1b[90m",
	Debug: "\x1b[34m",
	Info:  "",
	Warn:  "\x1b[33m",
	Error: "\x1b[31;1m",
}

func newPlainSink(w io.Writer, timestamps bool) *plainSink {
	isaTTY := false
	if f, ok := w.(*os.File); ok {
		isaTTY = isatty.IsTerminal(f.Fd())
	}
	return &plainSink{
		w:          w,
		isaTTY:     isaTTY,
		timestamps: timestamps,
		start:      time.Now(),
	}
}

type plainSink struct {
	w          io.Writer
	isaTTY     bool
	timestamps bool
	start      time.Time
}

func (s *plainSink) Log(entry Entry) error {
	var prefix string
	if s.timestamps {
		prefix += fmt.Sprintf("%08.3f ", time.Since(s.start).Seconds())
	}
	if scope, ok := entry.Attributes[scopeKey]; ok {
		prefix += scope + ": "
	}

	var err error
	if s.isaTTY {
		color := levelColors[entry.Level]
		reset := ""
		if color != "" {
			reset = "\x1b[0m"
		}
		_, err = fmt.Fprintf(s.w, "%s%s%s%s\n", color, prefix, entry.Message, reset)
	} else {
		_, err = fmt.Fprintf(s.w, "%s%s\n", prefix, entry.Message)
	}
	if err != nil {
		return fmt.Errorf("write log entry: %w", err)
	}
	return nil
}
