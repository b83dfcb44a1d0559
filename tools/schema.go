package tools

// Object builds a JSON Schema object with the given properties. Required
// lists the property names the model must supply.
func Object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// String describes a string property.
func String(description string) map[string]any {
	return property("string", description)
}

// Integer describes an integer property.
func Integer(description string) map[string]any {
	return property("integer", description)
}

// Number describes a floating point property.
func Number(description string) map[string]any {
	return property("number", description)
}

// Boolean describes a boolean property.
func Boolean(description string) map[string]any {
	return property("boolean", description)
}

// Array describes a list whose elements match items.
func Array(description string, items map[string]any) map[string]any {
	p := property("array", description)
	p["items"] = items
	return p
}

// Enum describes a string property restricted to values.
func Enum(description string, values ...string) map[string]any {
	p := property("string", description)
	p["enum"] = values
	return p
}

func property(typ, description string) map[string]any {
	p := map[string]any{"type": typ}
	if description != "" {
		p["description"] = description
	}
	return p
}
