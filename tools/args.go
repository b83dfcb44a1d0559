package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode unmarshals tool arguments into v. Empty and null arguments leave v
// untouched, so callers can preset defaults before decoding.
func Decode(args json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
