package protocol

// Tool describes a function the model may call. Parameters is a JSON
// Schema object describing the arguments.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Required returns the names listed in the schema's "required" array.
func (t Tool) Required() []string {
	switch req := t.Parameters["required"].(type) {
	case []string:
		return req
	case []any:
		names := make([]string, 0, len(req))
		for _, v := range req {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

// Properties returns the schema's "properties" map, or nil.
func (t Tool) Properties() map[string]any {
	props, _ := t.Parameters["properties"].(map[string]any)
	return props
}
