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

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Ratio returns a normalized Levenshtein similarity score in [0,100].
// 100 means identical strings; 0 means no character survives the edit.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}

	longer := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 100
	}

	distance := matchr.Levenshtein(a, b)
	return 100 * (1 - float64(distance)/float64(longer))
}

// bestCandidate returns the candidate with the highest Ratio against word.
// Ties keep the earliest candidate. ok is false when candidates is empty.
func bestCandidate(word string, candidates []string) (best string, score float64, ok bool) {
	for _, c := range candidates {
		s := Ratio(word, c)
		if !ok || s > score {
			best, score, ok = c, s, true
		}
	}
	return best, score, ok
}
