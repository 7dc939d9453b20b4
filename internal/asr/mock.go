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

// ScriptedRecognizer replays a fixed sequence of events, one per Feed call.
// Once the script is exhausted it keeps returning empty partials. Used in
// pipeline tests.
type ScriptedRecognizer struct {
	events []Event
	next   int
	closed bool
}

// NewScriptedRecognizer creates a recognizer replaying events in order.
func NewScriptedRecognizer(events ...Event) *ScriptedRecognizer {
	return &ScriptedRecognizer{events: events}
}

// Feed returns the next scripted event.
func (sr *ScriptedRecognizer) Feed(frame []byte) (Event, error) {
	if sr.next >= len(sr.events) {
		return Event{}, nil
	}
	ev := sr.events[sr.next]
	sr.next++
	return ev, nil
}

// Close marks the recognizer closed.
func (sr *ScriptedRecognizer) Close() error {
	sr.closed = true
	return nil
}

// Exhausted reports whether every scripted event has been consumed.
func (sr *ScriptedRecognizer) Exhausted() bool {
	return sr.next >= len(sr.events)
}
