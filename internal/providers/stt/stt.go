package stt

import (
	"context"
	"strings"
)

// Transcription is the provider-neutral result shape.
type Transcription struct {
	Text       string
	Words      []string
	WordCount  int
	Confidence float64
}

type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (Transcription, error)
	Close() error
}

// SplitWords tokenizes a transcript when the provider did not return
// word-level results.
func SplitWords(text string) []string {
	return strings.Fields(text)
}
