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
	"testing"

	"github.com/loqalabs/loqa-pronounce/internal/script"
)

func sentenceFor(t *testing.T, text string) script.Sentence {
	t.Helper()
	corpus := script.FromLines([]string{text})
	return corpus.Sentences()[0]
}

func TestAlignMarksSpokenWordsMatched(t *testing.T) {
	aligner := NewAligner(DefaultMispronounceThreshold)
	sentence := sentenceFor(t, "the quick brown fox")

	snapshot := aligner.Align(sentence, []string{"quick", "brown", "fox"})

	if len(snapshot.ColoredSentence) != 4 {
		t.Fatalf("len(ColoredSentence) = %d, want 4", len(snapshot.ColoredSentence))
	}

	// "the" is a stop word and is never classified.
	if got := snapshot.ColoredSentence[0].Status; got != StatusDefault {
		t.Errorf("stop word status = %q, want %q", got, StatusDefault)
	}
	for i := 1; i < 4; i++ {
		if got := snapshot.ColoredSentence[i].Status; got != StatusMatched {
			t.Errorf("word %q status = %q, want %q", snapshot.ColoredSentence[i].Word, got, StatusMatched)
		}
	}
	if len(snapshot.Mispronunciations) != 0 {
		t.Errorf("Mispronunciations = %v, want empty", snapshot.Mispronunciations)
	}
}

func TestAlignPreservesSentenceOrderAndIndices(t *testing.T) {
	aligner := NewAligner(DefaultMispronounceThreshold)
	sentence := sentenceFor(t, "she sells seashells")

	snapshot := aligner.Align(sentence, nil)

	for i, cw := range snapshot.ColoredSentence {
		if cw.Word != sentence.Words[i] {
			t.Errorf("ColoredSentence[%d].Word = %q, want %q", i, cw.Word, sentence.Words[i])
		}
		if cw.RefIndex != i {
			t.Errorf("ColoredSentence[%d].RefIndex = %d, want %d", i, cw.RefIndex, i)
		}
		if cw.Status != StatusDefault {
			t.Errorf("ColoredSentence[%d].Status = %q, want %q", i, cw.Status, StatusDefault)
		}
	}
}

func TestAlignFlagsMispronunciation(t *testing.T) {
	aligner := NewAligner(DefaultMispronounceThreshold)
	sentence := sentenceFor(t, "she sells seashells")

	snapshot := aligner.Align(sentence, []string{"she", "sells", "seeshells"})

	if got := snapshot.ColoredSentence[1].Status; got != StatusMatched {
		t.Errorf("sells status = %q, want %q", got, StatusMatched)
	}

	cw := snapshot.ColoredSentence[2]
	if cw.Status != StatusMispronounced {
		t.Fatalf("seashells status = %q, want %q", cw.Status, StatusMispronounced)
	}
	if cw.MatchWord == nil || *cw.MatchWord != "seeshells" {
		t.Errorf("MatchWord = %v, want seeshells", cw.MatchWord)
	}
	if cw.MatchScore == nil || *cw.MatchScore < DefaultMispronounceThreshold {
		t.Errorf("MatchScore = %v, want >= %d", cw.MatchScore, DefaultMispronounceThreshold)
	}

	variants, ok := snapshot.Mispronunciations["seashells"]
	if !ok || len(variants) != 1 || variants[0] != "seeshells" {
		t.Errorf("Mispronunciations[seashells] = %v, want [seeshells]", variants)
	}
}

func TestAlignExactMatchConsumesOneOccurrence(t *testing.T) {
	aligner := NewAligner(DefaultMispronounceThreshold)
	sentence := sentenceFor(t, "big dog big yard")

	snapshot := aligner.Align(sentence, []string{"big"})

	if got := snapshot.ColoredSentence[0].Status; got != StatusMatched {
		t.Errorf("first big status = %q, want %q", got, StatusMatched)
	}
	if got := snapshot.ColoredSentence[2].Status; got != StatusDefault {
		t.Errorf("second big status = %q, want %q", got, StatusDefault)
	}
}

func TestAlignRepeatedTokensMatchSeparateOccurrences(t *testing.T) {
	aligner := NewAligner(DefaultMispronounceThreshold)
	sentence := sentenceFor(t, "big dog big yard")

	snapshot := aligner.Align(sentence, []string{"big", "big"})

	if got := snapshot.ColoredSentence[0].Status; got != StatusMatched {
		t.Errorf("first big status = %q, want %q", got, StatusMatched)
	}
	if got := snapshot.ColoredSentence[2].Status; got != StatusMatched {
		t.Errorf("second big status = %q, want %q", got, StatusMatched)
	}
}

func TestAlignFuzzyDoesNotConsumeReferenceWord(t *testing.T) {
	aligner := NewAligner(DefaultMispronounceThreshold)
	sentence := sentenceFor(t, "cat dog")

	// "cog" fuzzy-marks "dog" mispronounced, but a later exact "dog"
	// can still claim the same position.
	snapshot := aligner.Align(sentence, []string{"cog", "dog"})

	cw := snapshot.ColoredSentence[1]
	if cw.Status != StatusMatched {
		t.Fatalf("dog status = %q, want %q", cw.Status, StatusMatched)
	}
	if cw.MatchWord != nil || cw.MatchScore != nil {
		t.Errorf("exact match must clear fuzzy diagnostics, got word=%v score=%v", cw.MatchWord, cw.MatchScore)
	}
	if len(snapshot.Mispronunciations) != 0 {
		t.Errorf("Mispronunciations = %v, want empty", snapshot.Mispronunciations)
	}
}

func TestAlignStopWordTokensIgnored(t *testing.T) {
	aligner := NewAligner(DefaultMispronounceThreshold)
	sentence := sentenceFor(t, "the cat sat")

	snapshot := aligner.Align(sentence, []string{"the", "a", "and"})

	for _, cw := range snapshot.ColoredSentence {
		if cw.Status != StatusDefault {
			t.Errorf("word %q status = %q, want %q", cw.Word, cw.Status, StatusDefault)
		}
	}
}

func TestAlignAllStopWordSentence(t *testing.T) {
	aligner := NewAligner(DefaultMispronounceThreshold)
	sentence := sentenceFor(t, "the and of")

	snapshot := aligner.Align(sentence, []string{"xyz"})

	for _, cw := range snapshot.ColoredSentence {
		if cw.Status != StatusDefault {
			t.Errorf("word %q status = %q, want %q", cw.Word, cw.Status, StatusDefault)
		}
	}
	if len(snapshot.Mispronunciations) != 0 {
		t.Errorf("Mispronunciations = %v, want empty", snapshot.Mispronunciations)
	}
}

func TestAlignBelowFuzzyThresholdLeavesDefault(t *testing.T) {
	aligner := NewAligner(90)
	sentence := sentenceFor(t, "cat dog")

	snapshot := aligner.Align(sentence, []string{"cog"})

	for _, cw := range snapshot.ColoredSentence {
		if cw.Status != StatusDefault {
			t.Errorf("word %q status = %q, want %q", cw.Word, cw.Status, StatusDefault)
		}
	}
}
