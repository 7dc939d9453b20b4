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
	"encoding/json"
	"testing"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func baseSnapshot() *Snapshot {
	return &Snapshot{
		ColoredSentence: []ColoredWord{
			{Word: "she", Status: StatusDefault, RefIndex: 0},
			{Word: "sells", Status: StatusMatched, RefIndex: 1},
			{Word: "seashells", Status: StatusMispronounced, RefIndex: 2, MatchWord: strPtr("seeshells"), MatchScore: floatPtr(88.9)},
		},
		Mispronunciations: map[string][]string{
			"seashells": {"seeshells"},
		},
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()

	if !a.Equal(b) {
		t.Error("structurally identical snapshots must compare equal")
	}
	if !a.Equal(a) {
		t.Error("a snapshot must equal itself")
	}
}

func TestSnapshotEqualDetectsDifferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"status change", func(s *Snapshot) { s.ColoredSentence[1].Status = StatusDefault }},
		{"match word change", func(s *Snapshot) { s.ColoredSentence[2].MatchWord = strPtr("sheshells") }},
		{"match word cleared", func(s *Snapshot) { s.ColoredSentence[2].MatchWord = nil }},
		{"score change", func(s *Snapshot) { s.ColoredSentence[2].MatchScore = floatPtr(50) }},
		{"extra variant", func(s *Snapshot) {
			s.Mispronunciations["seashells"] = append(s.Mispronunciations["seashells"], "sushells")
		}},
		{"variant replaced", func(s *Snapshot) {
			s.Mispronunciations["seashells"] = []string{"sushells"}
		}},
		{"extra word", func(s *Snapshot) {
			s.ColoredSentence = append(s.ColoredSentence, ColoredWord{Word: "shore", RefIndex: 3, Status: StatusDefault})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := baseSnapshot()
			b := baseSnapshot()
			tt.mutate(b)
			if a.Equal(b) {
				t.Error("Equal() = true for structurally different snapshots")
			}
		})
	}
}

func TestSnapshotEqualNil(t *testing.T) {
	var a *Snapshot
	if !a.Equal(nil) {
		t.Error("nil snapshots must compare equal")
	}
	if a.Equal(baseSnapshot()) {
		t.Error("nil must not equal a populated snapshot")
	}
	if baseSnapshot().Equal(nil) {
		t.Error("a populated snapshot must not equal nil")
	}
}

func TestMispronouncedWordsInSentenceOrder(t *testing.T) {
	s := &Snapshot{
		ColoredSentence: []ColoredWord{
			{Word: "red", Status: StatusMispronounced, RefIndex: 0, MatchWord: strPtr("rad")},
			{Word: "lorry", Status: StatusMatched, RefIndex: 1},
			{Word: "yellow", Status: StatusMispronounced, RefIndex: 2, MatchWord: strPtr("yellaw")},
		},
	}

	words := s.MispronouncedWords()
	if len(words) != 2 || words[0] != "red" || words[1] != "yellow" {
		t.Errorf("MispronouncedWords() = %v, want [red yellow]", words)
	}
}

func TestSnapshotWireFormat(t *testing.T) {
	data, err := json.Marshal(baseSnapshot())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded["colored_sentence"]; !ok {
		t.Error("wire snapshot missing colored_sentence key")
	}
	if _, ok := decoded["mispronunciations"]; !ok {
		t.Error("wire snapshot missing mispronunciations key")
	}

	var words []map[string]json.RawMessage
	if err := json.Unmarshal(decoded["colored_sentence"], &words); err != nil {
		t.Fatalf("colored_sentence decode error = %v", err)
	}
	for _, key := range []string{"word", "status", "ref-i", "match-score", "match-word", "match-i"} {
		if _, ok := words[0][key]; !ok {
			t.Errorf("colored word missing %q key", key)
		}
	}
}
