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

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/loqalabs/loqa-pronounce/internal/align"
	"github.com/loqalabs/loqa-pronounce/internal/asr"
	"github.com/loqalabs/loqa-pronounce/internal/audio"
	"github.com/loqalabs/loqa-pronounce/internal/config"
	"github.com/loqalabs/loqa-pronounce/internal/feedback"
	"github.com/loqalabs/loqa-pronounce/internal/logging"
	"github.com/loqalabs/loqa-pronounce/internal/messaging"
	"github.com/loqalabs/loqa-pronounce/internal/pipeline"
	"github.com/loqalabs/loqa-pronounce/internal/script"
	"github.com/loqalabs/loqa-pronounce/internal/server"
	"github.com/loqalabs/loqa-pronounce/internal/storage"
	"github.com/loqalabs/loqa-pronounce/internal/transport"
	"github.com/loqalabs/loqa-pronounce/internal/tts"
)

func main() {
	// Initialize structured logging
	if err := logging.Initialize(); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.LogError(err, "Failed to load configuration")
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Startup failures below are fatal: without a script or a recognizer
	// the streaming loop cannot run at all.
	corpus, err := script.Load(cfg.Match.ScriptPath)
	if err != nil {
		logging.LogError(err, "Failed to load reference script")
		log.Fatalf("Failed to load reference script: %v", err)
	}

	recognizer, err := asr.NewWhisperRecognizer(cfg.Recognizer)
	if err != nil {
		logging.LogError(err, "Failed to initialize recognizer")
		log.Fatalf("Failed to initialize recognizer: %v", err)
	}
	defer recognizer.Close()

	source, err := audio.NewExecSource(cfg.Recognizer.CaptureCommand, cfg.Recognizer.SampleRate, cfg.Recognizer.FrameSamples)
	if err != nil {
		logging.LogError(err, "Failed to start audio capture")
		log.Fatalf("Failed to start audio capture: %v", err)
	}
	defer source.Close()

	synth, err := tts.NewClient(cfg.TTS)
	if err != nil {
		logging.LogError(err, "Failed to initialize TTS client")
		log.Fatalf("Failed to initialize TTS client: %v", err)
	}

	clips, err := feedback.NewClipCache(cfg.Feedback.ClipDir, cfg.TTS.ResponseFormat, synth)
	if err != nil {
		logging.LogError(err, "Failed to initialize clip cache")
		log.Fatalf("Failed to initialize clip cache: %v", err)
	}

	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: cfg.Storage.DBPath})
	if err != nil {
		logging.LogError(err, "Failed to open database")
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	store := storage.NewPracticeEventsStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := audio.NewExecPlayer(cfg.Feedback.PlayerCommand)
	dispatcher := feedback.NewDispatcher(clips, player, cfg.Feedback.Workers, cfg.Feedback.QueueSize)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	broker := transport.NewSSEBroker()
	sinks := []pipeline.Sink{broker}

	// NATS is optional: the hub streams over SSE regardless.
	var nats *messaging.NATSService
	if cfg.NATS.Enabled {
		nats = messaging.NewNATSService(cfg.NATS)
		if err := nats.Connect(); err != nil {
			logging.LogWarn("NATS unavailable, continuing without broker",
				zap.Error(err),
			)
		} else {
			defer nats.Close()
			sinks = append(sinks, nats)
			if _, err := nats.SubscribeToPlayRequests(func(word string) {
				if clips.HasClip(word) {
					dispatcher.Dispatch([]string{word})
				}
			}); err != nil {
				logging.LogError(err, "Failed to subscribe to play requests")
			}
		}
	}

	pipe := pipeline.New(pipeline.Options{
		Source:     source,
		Recognizer: recognizer,
		Matcher:    align.NewMatcher(corpus, cfg.Match.SentenceThreshold),
		Aligner:    align.NewAligner(cfg.Match.MispronounceThreshold),
		Dispatcher: dispatcher,
		Recorder:   store,
		Sinks:      sinks,
		QueueSize:  cfg.Pipeline.QueueSize,
	})

	go func() {
		if err := pipe.Run(ctx); err != nil && err != context.Canceled {
			logging.LogError(err, "Pipeline stopped")
		}
	}()

	srv := server.New(cfg, server.Options{
		Corpus: corpus,
		Broker: broker,
		Clips:  clips,
		Player: player,
		Store:  store,
	})

	go func() {
		<-ctx.Done()
		if err := srv.Stop(); err != nil {
			logging.LogError(err, "Server shutdown failed")
		}
	}()

	logging.Sugar.Infow("🚀 loqa-pronounce starting",
		"http_port", cfg.Server.Port,
		"script", cfg.Match.ScriptPath,
		"db_path", cfg.Storage.DBPath,
	)

	if err := srv.Start(); err != nil {
		logging.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
