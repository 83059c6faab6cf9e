package log

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/exp/maps"
)

var _ Interface = (*Logger)(nil)

const scopeKey = "scope"

type Entry struct {
	Level      Level             `json:"level"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Message    string            `json:"message"`
	Time       time.Time         `json:"time"`

	Error error `json:"-"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	var errStr string
	if e.Error != nil {
		errStr = e.Error.Error()
	}
	return json.Marshal(struct {
		alias
		ErrorMsg string `json:"error,omitempty"`
	}{alias(e), errStr})
}

// Logger is the concrete logger.
type Logger struct {
	clock      clock.Clock
	level      Level
	attributes map[string]string
	sink       Sink
}

// New returns a new logger.
func New(level Level, sink Sink) *Logger {
	return &Logger{
		clock:      clock.New(),
		level:      level,
		attributes: map[string]string{},
		sink:       sink,
	}
}

func (l Logger) Scope(scope string) *Logger {
	return l.Attrs(map[string]string{scopeKey: scope})
}

// Attrs creates a new logger with the given attributes merged in.
func (l Logger) Attrs(attributes map[string]string) *Logger {
	attr := map[string]string{}
	maps.Copy(attr, l.attributes)
	maps.Copy(attr, attributes)
	l.attributes = attr
	return &l
}

func (l Logger) Level(level Level) *Logger {
	l.level = level
	return &l
}

func (l Logger) GetLevel() Level {
	return l.level
}

func (l *Logger) Log(entry Entry) {
	if entry.Level < l.level {
		return
	}
	if entry.Time.IsZero() {
		entry.Time = l.clock.Now().UTC()
	}
	if len(l.attributes) > 0 {
		entry.Attributes = l.attributes
	}
	if err := l.sink.Log(entry); err != nil {
		fmt.Fprintf(os.Stderr, "unsync:log: failed to log entry: %v", err)
	}
}

func (l *Logger) Logf(level Level, format string, args ...interface{}) {
	l.Log(Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *Logger) Tracef(format string, args ...interface{}) {
	l.Log(Entry{Level: Trace, Message: fmt.Sprintf(format, args...)})
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Log(Entry{Level: Debug, Message: fmt.Sprintf(format, args...)})
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Log(Entry{Level: Info, Message: fmt.Sprintf(format, args...)})
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Log(Entry{Level: Warn, Message: fmt.Sprintf(format, args...)})
}

func (l *Logger) Errorf(err error, format string, args ...interface{}) {
	if err == nil {
		return
	}
	l.Log(Entry{Level: Error, Message: fmt.Sprintf(format, args...) + ": " + err.Error(), Error: err})
}
