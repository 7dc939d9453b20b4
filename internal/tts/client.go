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

package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/loqalabs/loqa-pronounce/internal/config"
	"github.com/loqalabs/loqa-pronounce/internal/logging"
)

// Synthesizer renders text to a playable audio clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SpeechRequest is the payload for an OpenAI-compatible speech endpoint.
type SpeechRequest struct {
	Model  string  `json:"model"`
	Input  string  `json:"input"`
	Voice  string  `json:"voice"`
	Format string  `json:"response_format"`
	Speed  float32 `json:"speed,omitempty"`
}

// Client implements Synthesizer against an OpenAI-compatible TTS service.
type Client struct {
	baseURL   string
	client    *http.Client
	config    config.TTSConfig
	semaphore chan struct{} // Limits concurrent requests
}

// NewClient creates a TTS client from cfg.
func NewClient(cfg config.TTSConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("TTS URL cannot be empty")
	}

	c := &Client{
		baseURL:   strings.TrimSuffix(cfg.URL, "/"),
		client:    &http.Client{Timeout: cfg.Timeout},
		config:    cfg,
		semaphore: make(chan struct{}, cfg.MaxConcurrent),
	}

	if logging.Sugar != nil {
		logging.Sugar.Infow("🔊 TTS client initialized",
			"url", cfg.URL,
			"voice", cfg.Voice,
			"max_concurrent", cfg.MaxConcurrent,
		)
	}

	return c, nil
}

// Synthesize converts text to audio bytes in the configured format.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	// Acquire semaphore slot for concurrency control
	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("TTS synthesis queue full, request timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	request := SpeechRequest{
		Model:  "kokoro",
		Input:  text,
		Voice:  c.config.Voice,
		Format: c.config.ResponseFormat,
		Speed:  c.config.Speed,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	if logging.Logger != nil {
		logging.LogTTSOperation("synthesis_start",
			zap.String("voice", c.config.Voice),
			zap.Int("text_length", len(text)),
			zap.String("format", c.config.ResponseFormat),
		)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("TTS service returned %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read TTS response: %w", err)
	}

	if logging.Logger != nil {
		logging.LogTTSOperation("synthesis_complete",
			zap.Int("audio_bytes", len(audio)),
		)
	}

	return audio, nil
}
