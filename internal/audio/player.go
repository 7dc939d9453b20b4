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

package audio

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Player plays an audio clip to completion.
type Player interface {
	Play(path string) error
}

// ExecPlayer plays clips through an external player process (mpg123 by
// default). Play blocks until playback finishes, so callers run it from
// their own goroutine or worker pool.
type ExecPlayer struct {
	command string
}

// NewExecPlayer creates a player invoking command with the clip path
// appended as the final argument.
func NewExecPlayer(command string) *ExecPlayer {
	return &ExecPlayer{command: command}
}

// Play runs the player process for the clip at path.
func (p *ExecPlayer) Play(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("audio file not found: %s", path)
	}

	parts := strings.Fields(p.command)
	args := append(parts[1:], path)
	cmd := exec.Command(parts[0], args...)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("playback of %s failed: %w", path, err)
	}
	return nil
}
