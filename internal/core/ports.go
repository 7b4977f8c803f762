package core

import (
	"context"
)

// Image is a loaded question image ready to be attached to a model request.
type Image struct {
	Data      []byte
	MediaType string // e.g. "image/jpeg"
}

// Backend is the uniform capability every model provider adapter must
// satisfy: send an image plus a prompt, get the raw reply text back.
// Adapters convert provider errors into a returned error and never panic;
// callers measure elapsed time around Send and convert errors into
// failed replies. One attempt per call, no retry.
type Backend interface {
	// Name returns the configured model name (e.g. "claude", "grok").
	Name() string

	// Provider returns the provider identifier the adapter speaks to.
	Provider() string

	// Send submits the image and prompt and returns the raw reply text.
	Send(ctx context.Context, img Image, prompt string) (string, error)
}

// ResultSink receives completed results in run order. Implementations append
// to the run's persistent log.
type ResultSink interface {
	Append(result Result) error
}

// BackendRegistry resolves configured backends by name.
type BackendRegistry interface {
	// Get retrieves a backend by its configured name.
	Get(name string) (Backend, error)

	// List returns all registered backend names.
	List() []string
}
