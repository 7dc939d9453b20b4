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

import "github.com/loqalabs/loqa-pronounce/internal/script"

// DefaultSentenceThreshold is the minimum similarity score for a final
// transcription to be accepted as an attempt at a reference sentence.
const DefaultSentenceThreshold = 60

// Matcher finds the best-matching reference sentence for a transcription.
// It is read-only after construction and safe for concurrent use.
type Matcher struct {
	corpus    *script.Corpus
	threshold float64
}

// NewMatcher creates a matcher over corpus. threshold is inclusive: a score
// exactly at the threshold is accepted.
func NewMatcher(corpus *script.Corpus, threshold float64) *Matcher {
	return &Matcher{corpus: corpus, threshold: threshold}
}

// Best returns the reference sentence with the highest similarity to text
// and its score. When several sentences tie at the maximum, the one with the
// lowest script index wins. ok is false when no sentence reaches the
// acceptance threshold.
func (m *Matcher) Best(text string) (sentence script.Sentence, score float64, ok bool) {
	for _, s := range m.corpus.Sentences() {
		if r := Ratio(text, s.Text); !ok || r > score {
			sentence, score, ok = s, r, true
		}
	}

	if !ok || score < m.threshold {
		return script.Sentence{}, score, false
	}
	return sentence, score, true
}
