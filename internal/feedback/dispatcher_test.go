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

package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/loqalabs/loqa-pronounce/internal/audio"
	"github.com/loqalabs/loqa-pronounce/internal/tts"
)

func TestDispatcherPlaysDispatchedWords(t *testing.T) {
	cache := newTestCache(t, &tts.MockSynthesizer{})
	player := &audio.RecordingPlayer{}
	dispatcher := NewDispatcher(cache, player, 2, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)

	dispatcher.Dispatch([]string{"seashells", "lorry"})
	dispatcher.Stop()

	played := player.Played()
	if len(played) != 2 {
		t.Fatalf("played %d clips, want 2", len(played))
	}
	for _, path := range played {
		if path != cache.ClipPath("seashells") && path != cache.ClipPath("lorry") {
			t.Errorf("unexpected clip path %q", path)
		}
	}
}

func TestDispatchNeverBlocks(t *testing.T) {
	cache := newTestCache(t, &tts.MockSynthesizer{})
	player := &audio.RecordingPlayer{}
	// Workers never started: the queue (size 1) fills immediately.
	dispatcher := NewDispatcher(cache, player, 1, 1)

	done := make(chan struct{})
	go func() {
		dispatcher.Dispatch([]string{"one", "two", "three", "four"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
}

func TestDispatcherContainsPlaybackErrors(t *testing.T) {
	cache := newTestCache(t, &tts.MockSynthesizer{})
	player := &audio.RecordingPlayer{Err: context.DeadlineExceeded}
	dispatcher := NewDispatcher(cache, player, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)

	dispatcher.Dispatch([]string{"seashells"})
	dispatcher.Stop()

	// Stop returning means the worker survived the playback error.
	if len(player.Played()) != 0 {
		t.Error("failed playback must not be recorded as played")
	}
}
