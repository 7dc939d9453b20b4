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

// Package audio provides PCM frame capture and clip playback through
// external processes.
package audio

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/loqalabs/loqa-pronounce/internal/logging"
)

// FrameSource supplies fixed-size PCM frames, pulled continuously.
type FrameSource interface {
	// ReadFrame blocks until one full frame is available. io.EOF signals the
	// source has ended.
	ReadFrame() ([]byte, error)

	// Close stops the source
	Close() error
}

// ExecSource captures microphone audio by piping the stdout of an external
// capture process (arecord by default). Capture overflow inside the process
// is its own problem; the source just keeps reading whatever arrives.
type ExecSource struct {
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	frameBytes int
}

// NewExecSource starts the capture process. command is a full command line;
// when empty, a raw 16-bit mono arecord invocation for sampleRate is used.
// frameSamples is the fixed frame size in samples.
func NewExecSource(command string, sampleRate, frameSamples int) (*ExecSource, error) {
	if command == "" {
		command = fmt.Sprintf("arecord -q -f S16_LE -r %d -c 1 -t raw", sampleRate)
	}

	parts := strings.Fields(command)
	cmd := exec.Command(parts[0], parts[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open capture pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start capture command %q: %w", command, err)
	}

	logging.Sugar.Infow("🎤 Audio capture started",
		"command", command,
		"sample_rate", sampleRate,
		"frame_samples", frameSamples,
	)

	return &ExecSource{
		cmd:        cmd,
		stdout:     stdout,
		frameBytes: frameSamples * 2, // 16-bit samples
	}, nil
}

// ReadFrame blocks until a full frame has been captured.
func (s *ExecSource) ReadFrame() ([]byte, error) {
	frame := make([]byte, s.frameBytes)
	if _, err := io.ReadFull(s.stdout, frame); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return frame, nil
}

// Close stops the capture process.
func (s *ExecSource) Close() error {
	s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}
