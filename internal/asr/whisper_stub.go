//go:build !whisper

package asr

import (
	"fmt"

	"github.com/loqalabs/loqa-pronounce/internal/config"
)

// WhisperRecognizer stub implementation when whisper is disabled
type WhisperRecognizer struct {
	modelPath string
}

// NewWhisperRecognizer creates a stub recognizer when whisper is disabled
func NewWhisperRecognizer(cfg config.RecognizerConfig) (*WhisperRecognizer, error) {
	return &WhisperRecognizer{
		modelPath: cfg.ModelPath,
	}, nil
}

// Feed stub implementation returns an error for every frame
func (wr *WhisperRecognizer) Feed(frame []byte) (Event, error) {
	return Event{}, fmt.Errorf("whisper recognition disabled (build with -tags whisper to enable)")
}

// Close stub implementation
func (wr *WhisperRecognizer) Close() error {
	// Nothing to clean up in stub
	return nil
}
