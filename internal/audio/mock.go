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

package audio

import (
	"io"
	"sync"
)

// SliceSource replays pre-recorded frames, then returns io.EOF. Used in
// tests and offline runs.
type SliceSource struct {
	frames [][]byte
	next   int
}

// NewSliceSource creates a source over frames.
func NewSliceSource(frames ...[]byte) *SliceSource {
	return &SliceSource{frames: frames}
}

// ReadFrame returns the next frame or io.EOF.
func (s *SliceSource) ReadFrame() ([]byte, error) {
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	frame := s.frames[s.next]
	s.next++
	return frame, nil
}

// Close is a no-op.
func (s *SliceSource) Close() error {
	return nil
}

// RecordingPlayer records play requests instead of producing sound.
// Safe for concurrent use.
type RecordingPlayer struct {
	mu     sync.Mutex
	played []string
	Err    error // returned by every Play when set
}

// Play records path.
func (p *RecordingPlayer) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.played = append(p.played, path)
	return nil
}

// Played returns a copy of the recorded clip paths.
func (p *RecordingPlayer) Played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}
