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

// Package feedback generates and plays corrective audio clips for
// mispronounced reference words.
package feedback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/loqalabs/loqa-pronounce/internal/tts"
)

// ClipCache lazily synthesizes one audio clip per distinct word and keeps it
// on disk for the lifetime of the process. The clip file name is the literal
// lowercase word text, so the existence check is the idempotency gate.
type ClipCache struct {
	dir    string
	format string
	synth  tts.Synthesizer

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-word creation locks
}

// NewClipCache creates a cache rooted at dir, creating it if needed.
func NewClipCache(dir, format string, synth tts.Synthesizer) (*ClipCache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create clip directory %s: %w", dir, err)
	}
	return &ClipCache{
		dir:    dir,
		format: format,
		synth:  synth,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// ClipPath returns the on-disk path for word's clip, whether or not it
// exists yet.
func (c *ClipCache) ClipPath(word string) string {
	return filepath.Join(c.dir, strings.ToLower(word)+"."+c.format)
}

// HasClip reports whether a clip for word exists on disk.
func (c *ClipCache) HasClip(word string) bool {
	_, err := os.Stat(c.ClipPath(word))
	return err == nil
}

// EnsureClip synthesizes the clip for word unless it already exists and
// returns its path. Check-then-create is atomic per word, so concurrent
// callers for the same word synthesize at most once.
func (c *ClipCache) EnsureClip(ctx context.Context, word string) (string, error) {
	lock := c.wordLock(word)
	lock.Lock()
	defer lock.Unlock()

	path := c.ClipPath(word)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	audio, err := c.synth.Synthesize(ctx, word)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize clip for %q: %w", word, err)
	}

	if err := os.WriteFile(path, audio, 0640); err != nil {
		return "", fmt.Errorf("failed to write clip %s: %w", path, err)
	}

	return path, nil
}

func (c *ClipCache) wordLock(word string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[word]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[word] = lock
	}
	return lock
}
