package whisper

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fmueller/voxkey/internal/audio"
)

var (
	ErrModelUnavailable = errors.New("speech model unavailable")
	ErrEmptyAudio       = errors.New("audio buffer is empty")
)

// Request carries one finalized buffer and the soft decoding biases.
// Hotwords and the initial prompt steer recognition toward domain
// vocabulary but guarantee nothing about the output.
type Request struct {
	Audio         *audio.Buffer
	ModelPath     string
	Language      string
	Hotwords      []string
	InitialPrompt string
}

// Result is the raw engine output. Segments is opaque engine metadata,
// passed through unmodified; only Text is consumed downstream.
type Result struct {
	Text     string
	Segments json.RawMessage
}

type Engine interface {
	Transcribe(ctx context.Context, req Request) (Result, error)
}
