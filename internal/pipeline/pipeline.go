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

// Package pipeline drives the streaming transcription-alignment-feedback
// loop: PCM frames in, ordered update events out.
package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/loqalabs/loqa-pronounce/internal/align"
	"github.com/loqalabs/loqa-pronounce/internal/asr"
	"github.com/loqalabs/loqa-pronounce/internal/audio"
	"github.com/loqalabs/loqa-pronounce/internal/events"
	"github.com/loqalabs/loqa-pronounce/internal/logging"
	"github.com/loqalabs/loqa-pronounce/internal/script"
)

// Sink receives serialized update events in production order.
type Sink interface {
	Publish(data []byte) error
}

// FeedbackDispatcher triggers corrective playback for mispronounced words.
type FeedbackDispatcher interface {
	Dispatch(words []string)
}

// EventRecorder persists one practice event per final cycle.
type EventRecorder interface {
	Insert(event *events.PracticeEvent) error
}

// LiveUpdate is the wire shape of a live-transcription event.
type LiveUpdate struct {
	Transcription string `json:"transcription"`
}

// Pipeline owns the frame queue and the single consumer goroutine that runs
// Match -> Align -> Dedup -> Publish for every final transcription. All
// mutable state lives behind that one goroutine; nothing else reads it.
type Pipeline struct {
	source     audio.FrameSource
	recognizer asr.Recognizer
	matcher    *align.Matcher
	aligner    *align.Aligner
	dispatcher FeedbackDispatcher
	recorder   EventRecorder // optional
	sinks      []Sink

	frames chan []byte

	// Consumer-owned state. Single writer, no locking.
	currentSentence *script.Sentence
	lastSnapshot    *align.Snapshot
}

// Options collects the pipeline's collaborators.
type Options struct {
	Source     audio.FrameSource
	Recognizer asr.Recognizer
	Matcher    *align.Matcher
	Aligner    *align.Aligner
	Dispatcher FeedbackDispatcher
	Recorder   EventRecorder
	Sinks      []Sink
	QueueSize  int
}

// New creates a pipeline. QueueSize bounds the frame queue; overflow drops
// the oldest queued frame so latency stays bounded under slow consumption.
func New(opts Options) *Pipeline {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Pipeline{
		source:     opts.Source,
		recognizer: opts.Recognizer,
		matcher:    opts.Matcher,
		aligner:    opts.Aligner,
		dispatcher: opts.Dispatcher,
		recorder:   opts.Recorder,
		sinks:      opts.Sinks,
		frames:     make(chan []byte, queueSize),
	}
}

// Run starts the producer and consumer and blocks until ctx is canceled or
// the frame source ends. Per-cycle failures are contained; the loop only
// stops on shutdown.
func (p *Pipeline) Run(ctx context.Context) error {
	go p.produce(ctx)
	return p.consume(ctx)
}

// produce pulls frames from the source into the bounded queue. When the
// queue is full the oldest frame is discarded to make room.
func (p *Pipeline) produce(ctx context.Context) {
	defer close(p.frames)

	for {
		frame, err := p.source.ReadFrame()
		if err != nil {
			if err != io.EOF {
				logging.LogError(err, "Frame capture failed")
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case p.frames <- frame:
		default:
			select {
			case <-p.frames:
				logging.LogWarn("Frame queue full, dropping oldest frame")
			default:
			}
			select {
			case p.frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}

// consume drives the recognizer and the final-path pipeline from the single
// consumer goroutine.
func (p *Pipeline) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-p.frames:
			if !ok {
				return nil
			}

			event, err := p.recognizer.Feed(frame)
			if err != nil {
				logging.Sugar.Debugw("Recognizer error, frame skipped", "error", err)
				continue
			}

			if event.Final {
				p.handleFinal(event.Text)
			} else {
				p.publishLive(event.Text)
			}
		}
	}
}

// handleFinal runs one final-transcription cycle. An unmatched transcription
// clears the current sentence, publishes the raw text, and ends the cycle
// before alignment runs; this short circuit mirrors the behavior live
// displays were built against.
func (p *Pipeline) handleFinal(text string) {
	tokens := strings.Fields(text)
	record := events.NewPracticeEvent(text)

	sentence, score, ok := p.matcher.Best(strings.Join(tokens, " "))
	if !ok {
		p.currentSentence = nil
		record.SetNoMatch(score)
		p.publishLive(text)
		p.record(record)
		logging.LogPipelineStage("no_match",
			zap.String("transcription", text),
			zap.Float64("best_score", score),
		)
		return
	}

	p.currentSentence = &sentence
	record.SetMatch(sentence.Index, sentence.Text, score)

	snapshot := p.aligner.Align(sentence, tokens)
	record.SetSnapshot(snapshot)

	p.publishLive(text)

	if !snapshot.Equal(p.lastSnapshot) {
		p.lastSnapshot = snapshot
		p.publishSnapshot(snapshot)
		if p.dispatcher != nil {
			p.dispatcher.Dispatch(snapshot.MispronouncedWords())
		}
	}

	p.record(record)

	logging.LogAlignment(sentence.Text, len(snapshot.MispronouncedWords()),
		zap.Int("sentence_index", sentence.Index),
		zap.Float64("match_score", score),
	)
}

// CurrentSentence returns the sentence matched by the most recent final
// cycle, or nil. Only safe to call after Run has returned; it exists for
// tests and diagnostics.
func (p *Pipeline) CurrentSentence() *script.Sentence {
	return p.currentSentence
}

func (p *Pipeline) publishLive(text string) {
	data, err := json.Marshal(LiveUpdate{Transcription: text})
	if err != nil {
		logging.LogError(err, "Failed to marshal live update")
		return
	}
	p.publish(data)
}

func (p *Pipeline) publishSnapshot(snapshot *align.Snapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		logging.LogError(err, "Failed to marshal snapshot")
		return
	}
	p.publish(data)
}

func (p *Pipeline) publish(data []byte) {
	for _, sink := range p.sinks {
		if err := sink.Publish(data); err != nil {
			logging.LogError(err, "Failed to publish update event")
		}
	}
}

func (p *Pipeline) record(event *events.PracticeEvent) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Insert(event); err != nil {
		logging.LogError(err, "Failed to store practice event",
			zap.String("uuid", event.UUID),
		)
	}
}
