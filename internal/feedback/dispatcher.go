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
	"sync"

	"go.uber.org/zap"

	"github.com/loqalabs/loqa-pronounce/internal/audio"
	"github.com/loqalabs/loqa-pronounce/internal/logging"
)

// Dispatcher plays corrective clips for mispronounced words through a
// bounded worker pool. Dispatch never blocks the pipeline: when the request
// queue is full the request is dropped and logged. Playback failures are
// logged and never propagate.
type Dispatcher struct {
	cache  *ClipCache
	player audio.Player

	requests chan string
	workers  int

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given pool size and request
// queue length.
func NewDispatcher(cache *ClipCache, player audio.Player, workers, queueSize int) *Dispatcher {
	return &Dispatcher{
		cache:    cache,
		player:   player,
		requests: make(chan string, queueSize),
		workers:  workers,
	}
}

// Start launches the worker pool. Workers exit when ctx is canceled or the
// dispatcher is stopped.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker(ctx)
		}
	})
}

// Stop closes the request queue and waits for in-flight playback to finish.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.requests)
	})
	d.wg.Wait()
}

// Dispatch enqueues playback for each word without blocking. Words dropped
// on overflow are logged; the next snapshot will re-request them if the
// speaker mispronounces again.
func (d *Dispatcher) Dispatch(words []string) {
	for _, word := range words {
		select {
		case d.requests <- word:
		default:
			logging.LogWarn("Feedback queue full, dropping playback request",
				zap.String("word", word),
			)
		}
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case word, ok := <-d.requests:
			if !ok {
				return
			}
			d.play(ctx, word)
		}
	}
}

func (d *Dispatcher) play(ctx context.Context, word string) {
	path, err := d.cache.EnsureClip(ctx, word)
	if err != nil {
		logging.LogError(err, "Failed to prepare feedback clip",
			zap.String("word", word),
		)
		return
	}

	logging.LogPlayback(word, "play_start")
	if err := d.player.Play(path); err != nil {
		logging.LogError(err, "Failed to play feedback clip",
			zap.String("word", word),
			zap.String("path", path),
		)
		return
	}
	logging.LogPlayback(word, "play_complete")
}
