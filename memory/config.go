package memory

// DefaultPath is the knowledge directory, relative to the working directory.
const DefaultPath = "knowledge"

// Config locates the knowledge directory.
type Config struct {
	// Path is the FileStore root. Empty disables notes, reference documents
	// and transcripts.
	Path string `json:"path,omitempty"`
}

func DefaultConfig() Config {
	return Config{Path: DefaultPath}
}

func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
}

// NewStore returns the configured Store, or nil when memory is disabled.
func NewStore(cfg *Config) (Store, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	return NewFileStore(cfg.Path), nil
}
