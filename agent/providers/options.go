package providers

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Request option keys understood by every provider.
const (
	OptionTemperature = "temperature"
	OptionMaxTokens   = "max_tokens"
	OptionTopP        = "top_p"
)

// floatOption reads a numeric option. Values decoded from JSON, YAML or
// TOML arrive as float64, int, int64 or json.Number.
func floatOption(opts map[string]any, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func intOption(opts map[string]any, key string) (int64, bool) {
	f, ok := floatOption(opts, key)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// decodeArguments parses a tool call's JSON arguments into a map. Empty
// input yields an empty map.
func decodeArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	return args, nil
}

// encodeArguments is the inverse of decodeArguments.
func encodeArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}
