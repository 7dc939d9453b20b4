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
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/loqalabs/loqa-pronounce/internal/api"
	"github.com/loqalabs/loqa-pronounce/internal/audio"
	"github.com/loqalabs/loqa-pronounce/internal/config"
	"github.com/loqalabs/loqa-pronounce/internal/feedback"
	"github.com/loqalabs/loqa-pronounce/internal/logging"
	"github.com/loqalabs/loqa-pronounce/internal/script"
	"github.com/loqalabs/loqa-pronounce/internal/storage"
	"github.com/loqalabs/loqa-pronounce/internal/transport"
)

// Server exposes the pronounce hub's HTTP surface: the SSE update stream,
// the reference script, clip playback, and stored practice history.
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	server *http.Server

	corpus        *script.Corpus
	broker        *transport.SSEBroker
	clips         *feedback.ClipCache
	player        audio.Player
	eventsHandler *api.PracticeEventsHandler
}

// Options collects the server's collaborators.
type Options struct {
	Corpus *script.Corpus
	Broker *transport.SSEBroker
	Clips  *feedback.ClipCache
	Player audio.Player
	Store  *storage.PracticeEventsStore // optional
}

// New creates a server over the given components.
func New(cfg *config.Config, opts Options) *Server {
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		corpus: opts.Corpus,
		broker: opts.Broker,
		clips:  opts.Clips,
		player: opts.Player,
	}

	if opts.Store != nil {
		s.eventsHandler = api.NewPracticeEventsHandler(opts.Store)
	}

	s.server = &http.Server{
		Addr:        net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:     s.mux,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays disabled by default: the SSE stream is
		// long-lived and must not be severed by a server-side deadline.
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.routes()

	return s
}

// routes sets up HTTP routing
func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/transcription", s.broker)
	s.mux.HandleFunc("/script_sentences", s.handleScriptSentences)
	s.mux.HandleFunc("/play_audio/", s.handlePlayAudio)

	if s.eventsHandler != nil {
		s.mux.HandleFunc("/api/practice-events", s.eventsHandler.HandlePracticeEvents)
		s.mux.HandleFunc("/api/practice-events/", s.eventsHandler.HandlePracticeEventByID)
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	logging.Sugar.Infow("🚀 Pronounce hub listening",
		"addr", s.server.Addr,
		"sentences", s.corpus.Len(),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	logging.Sugar.Infow("🛑 Shutting down pronounce hub")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":          "healthy",
		"sentences":       s.corpus.Len(),
		"sse_subscribers": s.broker.SubscriberCount(),
	})
}

// handleScriptSentences returns the reference script as a JSON array.
func (s *Server) handleScriptSentences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.corpus.Texts()); err != nil {
		logging.LogError(err, "Failed to encode script sentences")
	}
}

// handlePlayAudio plays the cached clip for a word, asynchronously.
// POST /play_audio/{word}
func (s *Server) handlePlayAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	word := strings.TrimPrefix(r.URL.Path, "/play_audio/")
	if word == "" || strings.Contains(word, "/") {
		http.Error(w, "Word is required", http.StatusBadRequest)
		return
	}

	if !s.clips.HasClip(word) {
		http.Error(w, "Audio file not found", http.StatusNotFound)
		return
	}

	path := s.clips.ClipPath(word)
	go func() {
		if err := s.player.Play(path); err != nil {
			logging.LogError(err, "Playback request failed",
				zap.String("word", word),
			)
		}
	}()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Audio played"))
}
