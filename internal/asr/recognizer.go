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

package asr

// Event is one recognizer callback result. A partial event carries the
// best-effort text for the utterance in progress and may be revised; a final
// event commits the text and resets recognizer state for the next utterance.
type Event struct {
	Final bool
	Text  string
}

// Recognizer defines the interface for streaming speech-to-text engines.
// Implementations are stateful: they accumulate acoustic context across
// frames until an utterance boundary produces a final event.
type Recognizer interface {
	// Feed ingests one fixed-size PCM frame and returns the resulting
	// transcription event. No frame is ever dropped silently.
	Feed(frame []byte) (Event, error)

	// Close cleans up resources
	Close() error
}
