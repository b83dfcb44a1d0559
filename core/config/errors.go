package config

import "errors"

var (
	// ErrMissingCredentials means the API key or base URL is absent.
	ErrMissingCredentials = errors.New("missing LLM credentials")
	ErrMissingModel       = errors.New("model name is empty")
	ErrUnknownProvider    = errors.New("unknown provider")
)
