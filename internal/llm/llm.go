// Package llm abstracts the hosted AI provider: chat completion, speech
// synthesis and transcription.
package llm

import (
	"context"
	"errors"
	"io"
)

// ChatClient produces a single-turn reply from a system and a user message.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Synthesizer turns text into an audio stream. Callers must close it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// Transcriber converts the audio file at path to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Provider bundles every capability the chat pipeline needs.
type Provider interface {
	ChatClient
	Synthesizer
	Transcriber
}

// ErrNotConfigured is returned by the placeholder provider.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderProvider is used when no API credential is configured.
type PlaceholderProvider struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderProvider) Complete(ctx context.Context, system, user string) (string, error) {
	return "", ErrNotConfigured
}

// Synthesize returns ErrNotConfigured.
func (PlaceholderProvider) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	return nil, ErrNotConfigured
}

// Transcribe returns ErrNotConfigured.
func (PlaceholderProvider) Transcribe(ctx context.Context, path string) (string, error) {
	return "", ErrNotConfigured
}

var _ Provider = PlaceholderProvider{}
