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

import "strings"

// English stop words excluded from word alignment. Function words carry
// little pronunciation signal and recognizers drop or merge them freely, so
// scoring them would punish fluent speakers.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(stopWordList) {
		stopWords[w] = struct{}{}
	}
}

const stopWordList = `
i me my myself we our ours ourselves you you're you've you'll you'd your
yours yourself yourselves he him his himself she she's her hers herself it
it's its itself they them their theirs themselves what which who whom this
that that'll these those am is are was were be been being have has had
having do does did doing a an the and but if or because as until while of
at by for with about against between into through during before after
above below to from up down in out on off over under again further then
once here there when where why how all any both each few more most other
some such no nor not only own same so than too very s t can will just don
don't should should've now d ll m o re ve y ain aren aren't couldn
couldn't didn didn't doesn doesn't hadn hadn't hasn hasn't haven haven't
isn isn't ma mightn mightn't mustn mustn't needn needn't shan shan't
shouldn shouldn't wasn wasn't weren weren't won won't wouldn wouldn't
`

// IsStopWord reports whether word is excluded from alignment. The check is
// case-insensitive.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// filterStopWords returns words with stop words removed, preserving order
// and duplicates of the remaining entries.
func filterStopWords(words []string) []string {
	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if !IsStopWord(w) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}
