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

// Package align turns final transcriptions into word-level pronunciation
// diagnostics against a reference script.
package align

import "github.com/loqalabs/loqa-pronounce/internal/script"

// DefaultMispronounceThreshold is the minimum fuzzy score for a spoken token
// to count as a mispronunciation of a reference word. The bar is deliberately
// low: the fallback exists to catch phonetic near-misses, not to reject weak
// signals. Tunable via MATCH_MISPRONOUNCE_THRESHOLD.
const DefaultMispronounceThreshold = 10

// Aligner classifies each word of a matched reference sentence against the
// tokens of a final transcription. Read-only after construction.
type Aligner struct {
	mispronounceThreshold float64
}

// NewAligner creates an aligner with the given fuzzy mispronunciation
// threshold (inclusive).
func NewAligner(mispronounceThreshold float64) *Aligner {
	return &Aligner{mispronounceThreshold: mispronounceThreshold}
}

// Align classifies every word of sentence against tokens and returns the
// resulting snapshot. The snapshot always holds exactly one colored word per
// reference word, in sentence order.
//
// Alignment runs over stop-word-filtered views of both sides. An exact token
// match consumes one reference occurrence so a single occurrence is never
// matched twice. The fuzzy fallback marks a reference position mispronounced
// but does not consume it; that asymmetry lets later tokens still match the
// word exactly.
func (a *Aligner) Align(sentence script.Sentence, tokens []string) *Snapshot {
	colored := make([]ColoredWord, len(sentence.Words))
	for i, w := range sentence.Words {
		colored[i] = ColoredWord{Word: w, Status: StatusDefault, RefIndex: i}
	}

	filteredRef := filterStopWords(sentence.Words)
	filteredTokens := filterStopWords(tokens)

	for _, token := range filteredTokens {
		if containsWord(filteredRef, token) {
			if i := firstUnmatchedPosition(colored, token); i >= 0 {
				colored[i].Status = StatusMatched
				colored[i].MatchScore = nil
				colored[i].MatchWord = nil
				colored[i].MatchIndex = nil
			}
			filteredRef = removeFirst(filteredRef, token)
			continue
		}

		best, score, ok := bestCandidate(token, filteredRef)
		if !ok || score < a.mispronounceThreshold {
			continue
		}
		if i := firstPosition(colored, best); i >= 0 {
			spoken := token
			fuzzyScore := score
			colored[i].Status = StatusMispronounced
			colored[i].MatchWord = &spoken
			colored[i].MatchScore = &fuzzyScore
		}
	}

	mispronunciations := make(map[string][]string)
	for _, cw := range colored {
		if cw.Status == StatusMispronounced && cw.MatchWord != nil {
			mispronunciations[cw.Word] = append(mispronunciations[cw.Word], *cw.MatchWord)
		}
	}

	return &Snapshot{
		ColoredSentence:   colored,
		Mispronunciations: mispronunciations,
	}
}

// firstUnmatchedPosition returns the first reference position holding word
// that has not already been exact-matched, or -1.
func firstUnmatchedPosition(colored []ColoredWord, word string) int {
	for i := range colored {
		if colored[i].Word == word && colored[i].Status != StatusMatched {
			return i
		}
	}
	return -1
}

// firstPosition returns the first reference position holding word, or -1.
func firstPosition(colored []ColoredWord, word string) int {
	for i := range colored {
		if colored[i].Word == word {
			return i
		}
	}
	return -1
}

func containsWord(words []string, word string) bool {
	for _, w := range words {
		if w == word {
			return true
		}
	}
	return false
}

// removeFirst removes the first occurrence of word, leaving later
// occurrences available for further exact matches.
func removeFirst(words []string, word string) []string {
	for i, w := range words {
		if w == word {
			return append(words[:i:i], words[i+1:]...)
		}
	}
	return words
}
