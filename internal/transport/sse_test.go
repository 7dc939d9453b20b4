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

package transport

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/loqalabs/loqa-pronounce/internal/logging"
)

func TestMain(m *testing.M) {
	if err := logging.Initialize(); err != nil {
		os.Exit(1)
	}
	code := m.Run()
	logging.Close()
	os.Exit(code)
}

func TestBrokerDeliversInOrder(t *testing.T) {
	broker := NewSSEBroker()
	id, events := broker.Subscribe()
	defer broker.Unsubscribe(id)

	want := []string{"one", "two", "three"}
	for _, msg := range want {
		if err := broker.Publish([]byte(msg)); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	for i, msg := range want {
		select {
		case got := <-events:
			if string(got) != msg {
				t.Errorf("event %d = %q, want %q", i, got, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	broker := NewSSEBroker()
	id, events := broker.Subscribe()
	defer broker.Unsubscribe(id)

	// Fill the buffer and then some without consuming anything. Publish
	// must never block; the overflow is dropped for this subscriber.
	for i := 0; i < defaultSubscriberBuffer+8; i++ {
		if err := broker.Publish([]byte{byte(i)}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	received := 0
	for {
		select {
		case <-events:
			received++
			continue
		default:
		}
		break
	}

	if received != defaultSubscriberBuffer {
		t.Errorf("received %d events, want the buffered %d", received, defaultSubscriberBuffer)
	}
}

func TestBrokerSubscriberLifecycle(t *testing.T) {
	broker := NewSSEBroker()

	if broker.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", broker.SubscriberCount())
	}

	id, events := broker.Subscribe()
	if broker.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", broker.SubscriberCount())
	}

	broker.Unsubscribe(id)
	if broker.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0 after unsubscribe", broker.SubscriberCount())
	}

	if _, ok := <-events; ok {
		t.Error("subscriber channel must be closed on unsubscribe")
	}

	// Unsubscribing twice is a no-op.
	broker.Unsubscribe(id)
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	broker := NewSSEBroker()
	server := httptest.NewServer(broker)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}

	// Wait for the handler to register before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for broker.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := broker.Publish([]byte(`{"transcription":"hello"}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading event line: %v", err)
	}
	if line != "data: {\"transcription\":\"hello\"}\n" {
		t.Errorf("event line = %q, want data-framed JSON", line)
	}
	blank, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading frame terminator: %v", err)
	}
	if blank != "\n" {
		t.Errorf("frame terminator = %q, want a blank line", blank)
	}
}
