package gemini

import "errors"

var (
	ErrMissingAPIKey  = errors.New("gemini api key is required")
	ErrNotInitialized = errors.New("gemini generator is not initialized")
	ErrEmptyPrompt    = errors.New("prompt must not be empty")
	ErrEmptyResponse  = errors.New("gemini api returned empty response")
)
