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

// Package script loads the reference script the speaker is expected to read.
// The corpus is immutable after load; every downstream component shares the
// same sentence values for the lifetime of the process.
package script

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Sentence is one line of the reference script, lowercase-normalized and
// tokenized on whitespace. Index is the sentence's position in the script.
type Sentence struct {
	Index int
	Text  string
	Words []string
}

// Corpus is the ordered set of reference sentences.
type Corpus struct {
	sentences []Sentence
}

// Load reads a script file with one sentence per line. Blank lines are
// skipped; everything else is lowercased before tokenization.
func Load(path string) (*Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}

	corpus := FromLines(lines)
	if corpus.Len() == 0 {
		return nil, fmt.Errorf("script %s contains no sentences", path)
	}

	return corpus, nil
}

// FromLines builds a corpus from raw script lines, applying the same
// normalization as Load.
func FromLines(lines []string) *Corpus {
	var sentences []Sentence
	for _, line := range lines {
		text := strings.ToLower(strings.TrimSpace(line))
		if text == "" {
			continue
		}
		sentences = append(sentences, Sentence{
			Index: len(sentences),
			Text:  text,
			Words: strings.Fields(text),
		})
	}
	return &Corpus{sentences: sentences}
}

// Sentences returns the sentences in script order.
func (c *Corpus) Sentences() []Sentence {
	return c.sentences
}

// Len returns the number of sentences in the corpus.
func (c *Corpus) Len() int {
	return len(c.sentences)
}

// Texts returns the normalized sentence texts in script order.
func (c *Corpus) Texts() []string {
	texts := make([]string, len(c.sentences))
	for i, s := range c.sentences {
		texts[i] = s.Text
	}
	return texts
}
