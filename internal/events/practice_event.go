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

package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loqalabs/loqa-pronounce/internal/align"
)

// PracticeEvent records one final-transcription cycle: what was heard, which
// reference sentence it matched, and the word-level diagnostics.
type PracticeEvent struct {
	// Core identification
	UUID      string    `json:"uuid" db:"uuid"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	// Recognition results
	Transcription string `json:"transcription" db:"transcription"`

	// Sentence matching results
	Matched       bool    `json:"matched" db:"matched"`
	SentenceIndex int     `json:"sentence_index" db:"sentence_index"`
	SentenceText  string  `json:"sentence_text" db:"sentence_text"`
	MatchScore    float64 `json:"match_score" db:"match_score"`

	// Alignment results
	Snapshot *align.Snapshot `json:"snapshot,omitempty" db:"snapshot"`

	// Processing metadata
	ProcessingTime int64 `json:"processing_time_ms" db:"processing_time_ms"`
}

// NewPracticeEvent creates a new PracticeEvent with generated UUID and
// current timestamp. SentenceIndex starts at -1, meaning no match.
func NewPracticeEvent(transcription string) *PracticeEvent {
	return &PracticeEvent{
		UUID:          uuid.New().String(),
		Timestamp:     time.Now(),
		Transcription: transcription,
		SentenceIndex: -1,
	}
}

// SetMatch records the matched reference sentence and its score.
func (pe *PracticeEvent) SetMatch(index int, text string, score float64) {
	pe.Matched = true
	pe.SentenceIndex = index
	pe.SentenceText = text
	pe.MatchScore = score
}

// SetNoMatch records the best score of a rejected lookup.
func (pe *PracticeEvent) SetNoMatch(score float64) {
	pe.Matched = false
	pe.SentenceIndex = -1
	pe.MatchScore = score
}

// SetSnapshot attaches the alignment result and stamps the processing time.
func (pe *PracticeEvent) SetSnapshot(snapshot *align.Snapshot) {
	pe.Snapshot = snapshot
	pe.ProcessingTime = time.Since(pe.Timestamp).Milliseconds()
}

// SnapshotJSON returns the snapshot as a JSON string for database storage.
func (pe *PracticeEvent) SnapshotJSON() (string, error) {
	if pe.Snapshot == nil {
		return "", nil
	}

	data, err := json.Marshal(pe.Snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return string(data), nil
}

// SetSnapshotFromJSON parses a stored JSON snapshot.
func (pe *PracticeEvent) SetSnapshotFromJSON(jsonStr string) error {
	if jsonStr == "" {
		pe.Snapshot = nil
		return nil
	}

	var snapshot align.Snapshot
	if err := json.Unmarshal([]byte(jsonStr), &snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot JSON: %w", err)
	}

	pe.Snapshot = &snapshot
	return nil
}

// MispronouncedCount returns how many reference words were mispronounced.
func (pe *PracticeEvent) MispronouncedCount() int {
	if pe.Snapshot == nil {
		return 0
	}
	return len(pe.Snapshot.MispronouncedWords())
}

// IsValid performs basic validation on the practice event
func (pe *PracticeEvent) IsValid() error {
	if pe.UUID == "" {
		return fmt.Errorf("UUID is required")
	}

	if pe.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	if pe.MatchScore < 0 || pe.MatchScore > 100 {
		return fmt.Errorf("match score must be between 0 and 100")
	}

	if pe.Matched && pe.SentenceIndex < 0 {
		return fmt.Errorf("matched event requires a sentence index")
	}

	return nil
}

// String returns a human-readable representation of the practice event
func (pe *PracticeEvent) String() string {
	return fmt.Sprintf("PracticeEvent{UUID: %s, Transcription: %q, Matched: %t, Sentence: %d, Score: %.1f, Mispronounced: %d}",
		pe.UUID, pe.Transcription, pe.Matched, pe.SentenceIndex, pe.MatchScore, pe.MispronouncedCount())
}
