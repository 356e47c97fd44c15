// Package responseformat encodes query results as JSON or MessagePack for
// whatever surface carries them, CLI output included.
package responseformat

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects a wire encoding for results
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgPack Format = "msgpack"
)

// ParseFormat maps a user-supplied format name to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMsgPack):
		return FormatMsgPack, nil
	default:
		return "", fmt.Errorf("unknown format %q, want json or msgpack", s)
	}
}

// Formatter encodes result values in the selected format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Write encodes data to w. JSON output is indented for terminal readability;
// MessagePack reuses the json struct tags so both encodings expose the same
// field names.
func (f *Formatter) Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatMsgPack:
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json")
		return encoder.Encode(data)
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
}
