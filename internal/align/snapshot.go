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

package align

// WordStatus classifies one reference word within a snapshot.
type WordStatus string

// Word statuses. The wire values match what live displays key their
// colors on, so they are part of the update stream contract.
const (
	StatusDefault       WordStatus = "default"
	StatusMatched       WordStatus = "matched"
	StatusMispronounced WordStatus = "mispronounced"
)

// ColoredWord is the per-word diagnostic for one reference word position.
// MatchScore and MatchWord are set only for mispronounced words.
type ColoredWord struct {
	Word       string     `json:"word"`
	Status     WordStatus `json:"status"`
	RefIndex   int        `json:"ref-i"`
	MatchScore *float64   `json:"match-score"`
	MatchWord  *string    `json:"match-word"`
	MatchIndex *int       `json:"match-i"`
}

// Snapshot is the complete word-level classification of the currently
// matched reference sentence at one point in time. Snapshots are immutable
// values once built; consecutive identical snapshots are published once.
type Snapshot struct {
	ColoredSentence   []ColoredWord       `json:"colored_sentence"`
	Mispronunciations map[string][]string `json:"mispronunciations"`
}

// Equal reports full structural equality with other: every field of every
// colored word, and the exact contents and order of each mispronunciation
// variant list.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}

	if len(s.ColoredSentence) != len(other.ColoredSentence) {
		return false
	}
	for i := range s.ColoredSentence {
		if !s.ColoredSentence[i].equal(&other.ColoredSentence[i]) {
			return false
		}
	}

	if len(s.Mispronunciations) != len(other.Mispronunciations) {
		return false
	}
	for word, variants := range s.Mispronunciations {
		otherVariants, ok := other.Mispronunciations[word]
		if !ok || len(variants) != len(otherVariants) {
			return false
		}
		for i := range variants {
			if variants[i] != otherVariants[i] {
				return false
			}
		}
	}

	return true
}

func (w *ColoredWord) equal(other *ColoredWord) bool {
	return w.Word == other.Word &&
		w.Status == other.Status &&
		w.RefIndex == other.RefIndex &&
		equalFloatPtr(w.MatchScore, other.MatchScore) &&
		equalStringPtr(w.MatchWord, other.MatchWord) &&
		equalIntPtr(w.MatchIndex, other.MatchIndex)
}

// MispronouncedWords returns the reference words marked mispronounced, in
// sentence order.
func (s *Snapshot) MispronouncedWords() []string {
	var words []string
	for _, cw := range s.ColoredSentence {
		if cw.Status == StatusMispronounced {
			words = append(words, cw.Word)
		}
	}
	return words
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
