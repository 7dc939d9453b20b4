/*
 * This file is part of Loqa (https://github.com/loqalabs/loqa).
 * Copyright (C) 2025 Loqa Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

//go:build whisper

package asr

import (
	"fmt"
	"os"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/loqalabs/loqa-pronounce/internal/config"
	"github.com/loqalabs/loqa-pronounce/internal/logging"
)

// speechRMS is the energy floor above which a frame counts as speech.
const speechRMS = 0.01

// WhisperRecognizer adapts whisper.cpp to the streaming Recognizer contract.
// Whisper has no incremental decoder, so the adapter buffers the utterance in
// progress, re-decodes it on a cadence for partial events, and commits a
// final event once trailing silence ends the utterance.
type WhisperRecognizer struct {
	model     whisper.Model
	modelPath string

	sampleRate      int
	partialInterval int // samples between partial decodes
	silenceWindow   int // trailing silence samples that end an utterance

	samples        []float32
	speechSeen     bool
	silenceSamples int
	sincePartial   int
	lastPartial    string
}

// NewWhisperRecognizer loads the whisper model and returns a streaming
// recognizer configured from cfg.
func NewWhisperRecognizer(cfg config.RecognizerConfig) (*WhisperRecognizer, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("whisper model not found at %s", cfg.ModelPath)
	}

	model, err := whisper.New(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model: %w", err)
	}

	logging.Sugar.Infow("✅ Whisper model loaded", "path", cfg.ModelPath)

	return &WhisperRecognizer{
		model:           model,
		modelPath:       cfg.ModelPath,
		sampleRate:      cfg.SampleRate,
		partialInterval: int(cfg.PartialInterval.Seconds() * float64(cfg.SampleRate)),
		silenceWindow:   int(cfg.SilenceWindow.Seconds() * float64(cfg.SampleRate)),
	}, nil
}

// Feed ingests one PCM frame. It returns a final event when trailing silence
// ends an utterance that contained speech, and otherwise a partial event with
// the most recent cadence decode.
func (wr *WhisperRecognizer) Feed(frame []byte) (Event, error) {
	if wr.model == nil {
		return Event{}, fmt.Errorf("whisper model not initialized")
	}

	pcm := DecodeFrame(frame)
	wr.samples = append(wr.samples, pcm...)
	wr.sincePartial += len(pcm)

	if RMS(pcm) >= speechRMS {
		wr.speechSeen = true
		wr.silenceSamples = 0
	} else {
		wr.silenceSamples += len(pcm)
	}

	if !wr.speechSeen {
		// Keep at most one silence window of lead-in audio buffered.
		if len(wr.samples) > 2*wr.silenceWindow {
			wr.samples = wr.samples[len(wr.samples)-wr.silenceWindow:]
		}
		return Event{Final: false, Text: wr.lastPartial}, nil
	}

	if wr.silenceSamples >= wr.silenceWindow {
		text, err := wr.decode(wr.samples)
		wr.reset()
		if err != nil {
			return Event{}, err
		}
		return Event{Final: true, Text: text}, nil
	}

	if wr.sincePartial >= wr.partialInterval {
		wr.sincePartial = 0
		text, err := wr.decode(wr.samples)
		if err != nil {
			return Event{}, err
		}
		wr.lastPartial = text
	}

	return Event{Final: false, Text: wr.lastPartial}, nil
}

// decode runs a full whisper pass over the buffered utterance.
func (wr *WhisperRecognizer) decode(samples []float32) (string, error) {
	ctx, err := wr.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create whisper context: %w", err)
	}

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("failed to process audio: %w", err)
	}

	var transcript strings.Builder
	for {
		segment, err := ctx.NextSegment()
		if err != nil {
			break
		}
		transcript.WriteString(segment.Text)
	}

	return NormalizeText(transcript.String()), nil
}

// reset clears utterance state after a final event.
func (wr *WhisperRecognizer) reset() {
	wr.samples = wr.samples[:0]
	wr.speechSeen = false
	wr.silenceSamples = 0
	wr.sincePartial = 0
	wr.lastPartial = ""
}

// Close cleans up the whisper model.
func (wr *WhisperRecognizer) Close() error {
	if wr.model != nil {
		wr.model.Close()
		logging.Sugar.Infow("🧠 Whisper model closed")
	}
	return nil
}
