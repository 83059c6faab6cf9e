package log

import "fmt"

// Level is the log level.
type Level int

// Log levels.
const (
	// Default is a special value that means the log level will use a default.
	Default Level = 0
	Trace   Level = 1
	Debug   Level = 5
	Info    Level = 9
	Warn    Level = 13
	Error   Level = 17
)

var levelNames = map[Level]string{
	Default: "default",
	Trace:   "trace",
	Debug:   "debug",
	Info:    "info",
	Warn:    "warn",
	Error:   "error",
}

var levelValues = map[string]Level{
	"default": Default,
	"trace":   Trace,
	"debug":   Debug,
	"info":    Info,
	"warn":    Warn,
	"error":   Error,
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) MarshalText() ([]byte, error) {
	name, ok := levelNames[l]
	if !ok {
		return nil, fmt.Errorf("%d is not a valid log level", int(l))
	}
	return []byte(name), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	level, ok := levelValues[string(text)]
	if !ok {
		return fmt.Errorf("%q is not a valid log level", string(text))
	}
	*l = level
	return nil
}

// ParseLevel parses a log level from text.
func ParseLevel(input string) (Level, error) {
	var level Level
	err := level.UnmarshalText([]byte(input))
	return level, err
}
