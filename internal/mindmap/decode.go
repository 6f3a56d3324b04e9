package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode checks that text is a single well-formed JSON value and returns it
// compacted. No structural rules are applied.
func Decode(text string) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return json.RawMessage(buf.Bytes()), nil
}
