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

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/loqalabs/loqa-pronounce/internal/audio"
	"github.com/loqalabs/loqa-pronounce/internal/config"
	"github.com/loqalabs/loqa-pronounce/internal/events"
	"github.com/loqalabs/loqa-pronounce/internal/feedback"
	"github.com/loqalabs/loqa-pronounce/internal/script"
	"github.com/loqalabs/loqa-pronounce/internal/storage"
	"github.com/loqalabs/loqa-pronounce/internal/transport"
	"github.com/loqalabs/loqa-pronounce/internal/tts"
)

type testServer struct {
	srv    *Server
	clips  *feedback.ClipCache
	player *audio.RecordingPlayer
	store  *storage.PracticeEventsStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clips, err := feedback.NewClipCache(t.TempDir(), "mp3", &tts.MockSynthesizer{})
	if err != nil {
		t.Fatalf("NewClipCache() error = %v", err)
	}

	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewPracticeEventsStore(db)

	player := &audio.RecordingPlayer{}
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 3000},
	}

	srv := New(cfg, Options{
		Corpus: script.FromLines([]string{"the quick brown fox", "she sells seashells"}),
		Broker: transport.NewSSEBroker(),
		Clips:  clips,
		Player: player,
		Store:  store,
	})

	return &testServer{srv: srv, clips: clips, player: player, store: store}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid health JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
	if body["sentences"] != float64(2) {
		t.Errorf("sentences field = %v, want 2", body["sentences"])
	}
}

func TestHandleScriptSentences(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/script_sentences", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var sentences []string
	if err := json.Unmarshal(rec.Body.Bytes(), &sentences); err != nil {
		t.Fatalf("invalid script JSON: %v", err)
	}
	if len(sentences) != 2 || sentences[0] != "the quick brown fox" {
		t.Errorf("sentences = %v, want the normalized script", sentences)
	}
}

func TestHandleScriptSentencesMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/script_sentences", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandlePlayAudioUnknownWord(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/play_audio/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := rec.Body.String(); got != "Audio file not found\n" {
		t.Errorf("body = %q, want the not-found message", got)
	}
}

func TestHandlePlayAudio(t *testing.T) {
	ts := newTestServer(t)

	if _, err := ts.clips.EnsureClip(context.Background(), "seashells"); err != nil {
		t.Fatalf("EnsureClip() error = %v", err)
	}

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/play_audio/seashells", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "Audio played" {
		t.Errorf("body = %q, want \"Audio played\"", got)
	}

	// Playback runs asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for len(ts.player.Played()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("clip was never played")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if played := ts.player.Played(); played[0] != ts.clips.ClipPath("seashells") {
		t.Errorf("played %q, want the cached clip path", played[0])
	}
}

func TestHandlePlayAudioRequiresWord(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/play_audio/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlePlayAudioMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/play_audio/seashells", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestPracticeEventsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	event := events.NewPracticeEvent("the quick brown fox")
	event.SetMatch(0, "the quick brown fox", 100)
	if err := ts.store.Insert(event); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/practice-events", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Events []*events.PracticeEvent `json:"events"`
		Total  int64                   `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if body.Total != 1 || len(body.Events) != 1 {
		t.Fatalf("total = %d with %d events, want 1 and 1", body.Total, len(body.Events))
	}
	if body.Events[0].UUID != event.UUID {
		t.Errorf("event UUID = %q, want %q", body.Events[0].UUID, event.UUID)
	}

	rec = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/practice-events/"+event.UUID, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("by-id status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/practice-events/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}
