package vision

// Config selects the matching backend.
type Config struct {
	// Exact restricts matching to pixel-identical regions and ignores
	// confidence thresholds. The zero value uses similarity scoring.
	Exact bool `json:"exact,omitempty"`
}

// DefaultConfig uses the similarity matcher.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}
	if source.Exact {
		c.Exact = true
	}
}
