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

// Package transport streams pipeline updates to HTTP clients as server-sent
// events.
package transport

import (
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/loqalabs/loqa-pronounce/internal/logging"
)

// defaultSubscriberBuffer is how many events a subscriber may fall behind
// before messages are dropped for it. Dropping keeps the pipeline from ever
// blocking on a slow consumer; each subscriber still sees events in FIFO
// order.
const defaultSubscriberBuffer = 64

// SSEBroker fans out serialized update events to any number of server-sent
// event subscribers.
type SSEBroker struct {
	mu          sync.Mutex
	subscribers map[int]chan []byte
	nextID      int
	bufferSize  int
}

// NewSSEBroker creates a broker with the default per-subscriber buffer.
func NewSSEBroker() *SSEBroker {
	return &SSEBroker{
		subscribers: make(map[int]chan []byte),
		bufferSize:  defaultSubscriberBuffer,
	}
}

// Publish delivers data to every subscriber in production order. A
// subscriber whose buffer is full loses this event rather than stalling the
// publisher.
func (b *SSEBroker) Publish(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- data:
		default:
			logging.LogWarn("SSE subscriber too slow, dropping event",
				zap.Int("subscriber", id),
			)
		}
	}
	return nil
}

// Subscribe registers a new consumer and returns its id and event channel.
func (b *SSEBroker) Subscribe() (int, <-chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan []byte, b.bufferSize)
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a consumer and closes its channel.
func (b *SSEBroker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// SubscriberCount returns the number of connected consumers.
func (b *SSEBroker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// ServeHTTP streams events to one client until it disconnects. Each message
// is framed as `data: <JSON>\n\n`.
func (b *SSEBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id, events := b.Subscribe()
	defer b.Unsubscribe(id)

	logging.Sugar.Infow("New SSE subscriber", "subscriber", id)

	for {
		select {
		case <-r.Context().Done():
			logging.Sugar.Infow("SSE subscriber disconnected", "subscriber", id)
			return
		case data, ok := <-events:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
