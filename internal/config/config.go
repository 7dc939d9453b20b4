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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the pronounce hub
type Config struct {
	Server     ServerConfig
	Recognizer RecognizerConfig
	Match      MatchConfig
	Pipeline   PipelineConfig
	TTS        TTSConfig
	Feedback   FeedbackConfig
	Logging    LoggingConfig
	NATS       NATSConfig
	Storage    StorageConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RecognizerConfig holds speech recognizer configuration
type RecognizerConfig struct {
	ModelPath       string        // Path to the whisper model file
	SampleRate      int           // PCM sample rate in Hz
	FrameSamples    int           // Samples per captured frame
	CaptureCommand  string        // External capture command (empty = default arecord)
	PartialInterval time.Duration // Minimum audio between partial decodes
	SilenceWindow   time.Duration // Trailing silence that ends an utterance
}

// MatchConfig holds sentence matching and alignment thresholds
type MatchConfig struct {
	ScriptPath            string  // Reference script, one sentence per line
	SentenceThreshold     float64 // Minimum score [0,100] to accept a sentence match
	MispronounceThreshold float64 // Minimum score [0,100] for the fuzzy word fallback
}

// PipelineConfig holds streaming pipeline configuration
type PipelineConfig struct {
	QueueSize int // Bounded frame queue length; overflow drops the oldest frame
}

// TTSConfig holds Text-to-Speech service configuration
type TTSConfig struct {
	URL            string        // REST API URL for an OpenAI-compatible TTS service
	Voice          string        // Voice to use for feedback clips
	Speed          float32       // Speech speed (1.0 = normal)
	ResponseFormat string        // Audio format (mp3, wav, opus, flac)
	MaxConcurrent  int           // Maximum concurrent TTS requests
	Timeout        time.Duration // Request timeout
}

// FeedbackConfig holds feedback clip cache and playback configuration
type FeedbackConfig struct {
	ClipDir       string // Directory holding one clip per mispronounced word
	Workers       int    // Playback worker pool size
	QueueSize     int    // Bounded playback request queue length
	PlayerCommand string // External playback command, invoked with the clip path
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// NATSConfig holds NATS messaging configuration
type NATSConfig struct {
	URL           string
	Enabled       bool
	MaxReconnect  int
	ReconnectWait time.Duration
}

// StorageConfig holds practice event storage configuration
type StorageConfig struct {
	DBPath string
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnvString("PRONOUNCE_HOST", "0.0.0.0"),
			Port:         getEnvInt("PRONOUNCE_PORT", 3000),
			ReadTimeout:  getEnvDuration("PRONOUNCE_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("PRONOUNCE_WRITE_TIMEOUT", 0),
		},
		Recognizer: RecognizerConfig{
			ModelPath:       getEnvString("WHISPER_MODEL_PATH", "./models/ggml-tiny.en.bin"),
			SampleRate:      getEnvInt("AUDIO_SAMPLE_RATE", 16000),
			FrameSamples:    getEnvInt("AUDIO_FRAME_SAMPLES", 4000),
			CaptureCommand:  getEnvString("AUDIO_CAPTURE_COMMAND", ""),
			PartialInterval: getEnvDuration("ASR_PARTIAL_INTERVAL", time.Second),
			SilenceWindow:   getEnvDuration("ASR_SILENCE_WINDOW", 750*time.Millisecond),
		},
		Match: MatchConfig{
			ScriptPath:            getEnvString("SCRIPT_PATH", "./script.txt"),
			SentenceThreshold:     getEnvFloat64("MATCH_SENTENCE_THRESHOLD", 60),
			MispronounceThreshold: getEnvFloat64("MATCH_MISPRONOUNCE_THRESHOLD", 10),
		},
		Pipeline: PipelineConfig{
			QueueSize: getEnvInt("PIPELINE_QUEUE_SIZE", 64),
		},
		TTS: TTSConfig{
			URL:            getEnvString("TTS_URL", "http://localhost:8880/v1"),
			Voice:          getEnvString("TTS_VOICE", "af_bella"),
			Speed:          getEnvFloat32("TTS_SPEED", 0.8),
			ResponseFormat: getEnvString("TTS_FORMAT", "mp3"),
			MaxConcurrent:  getEnvInt("TTS_MAX_CONCURRENT", 4),
			Timeout:        getEnvDuration("TTS_TIMEOUT", 10*time.Second),
		},
		Feedback: FeedbackConfig{
			ClipDir:       getEnvString("FEEDBACK_CLIP_DIR", "./sound"),
			Workers:       getEnvInt("FEEDBACK_WORKERS", 4),
			QueueSize:     getEnvInt("FEEDBACK_QUEUE_SIZE", 32),
			PlayerCommand: getEnvString("FEEDBACK_PLAYER_COMMAND", "mpg123 -q"),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		NATS: NATSConfig{
			URL:           getEnvString("NATS_URL", "nats://localhost:4222"),
			Enabled:       getEnvBool("NATS_ENABLED", false),
			MaxReconnect:  getEnvInt("NATS_MAX_RECONNECT", 10),
			ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
		Storage: StorageConfig{
			DBPath: getEnvString("DB_PATH", "./data/loqa-pronounce.db"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Recognizer.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %d", c.Recognizer.SampleRate)
	}

	if c.Recognizer.FrameSamples <= 0 {
		return fmt.Errorf("frame samples must be positive: %d", c.Recognizer.FrameSamples)
	}

	if c.Match.ScriptPath == "" {
		return fmt.Errorf("script path must be provided")
	}

	if c.Match.SentenceThreshold < 0 || c.Match.SentenceThreshold > 100 {
		return fmt.Errorf("sentence threshold must be within [0,100]: %f", c.Match.SentenceThreshold)
	}

	if c.Match.MispronounceThreshold < 0 || c.Match.MispronounceThreshold > 100 {
		return fmt.Errorf("mispronounce threshold must be within [0,100]: %f", c.Match.MispronounceThreshold)
	}

	if c.Pipeline.QueueSize <= 0 {
		return fmt.Errorf("pipeline queue size must be positive: %d", c.Pipeline.QueueSize)
	}

	if c.TTS.URL == "" {
		return fmt.Errorf("TTS URL must be provided")
	}

	if c.TTS.MaxConcurrent <= 0 {
		return fmt.Errorf("TTS max concurrent must be positive: %d", c.TTS.MaxConcurrent)
	}

	if c.TTS.Speed <= 0 {
		return fmt.Errorf("TTS speed must be positive: %f", c.TTS.Speed)
	}

	if c.Feedback.Workers <= 0 {
		return fmt.Errorf("feedback workers must be positive: %d", c.Feedback.Workers)
	}

	if c.Feedback.QueueSize <= 0 {
		return fmt.Errorf("feedback queue size must be positive: %d", c.Feedback.QueueSize)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatValue)
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
