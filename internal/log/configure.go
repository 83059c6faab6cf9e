package log

import "io"

// Config for the logger. Embed it in a kong CLI struct to expose the flags.
type Config struct {
	Level      Level `help:"Log level." default:"info" env:"LOG_LEVEL"`
	JSON       bool  `help:"Log in JSON format." env:"LOG_JSON"`
	Timestamps bool  `help:"Include relative timestamps in logs." env:"LOG_TIMESTAMPS"`
}

// Configure returns a logger writing to w as described by cfg.
func Configure(w io.Writer, cfg Config) *Logger {
	if cfg.JSON {
		return New(cfg.Level, newJSONSink(w))
	}
	return New(cfg.Level, newPlainSink(w, cfg.Timestamps))
}
