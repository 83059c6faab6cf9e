package log

import (
	"encoding/json"
	"fmt"
	"io"
)

var _ Sink = (*jsonSink)(nil)

func newJSONSink(w io.Writer) *jsonSink {
	return &jsonSink{enc: json.NewEncoder(w)}
}

type jsonSink struct {
	enc *json.Encoder
}

func (s *jsonSink) Log(entry Entry) error {
	if err := s.enc.Encode(entry); err != nil {
		return fmt.Errorf("encode log entry: %w", err)
	}
	return nil
}
