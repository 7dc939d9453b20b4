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

package storage

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/loqalabs/loqa-pronounce/internal/events"
)

// PracticeEventsStore handles database operations for practice events
type PracticeEventsStore struct {
	db *Database
}

// ListOptions controls filtering and pagination for List.
type ListOptions struct {
	SentenceIndex *int // filter by matched sentence; nil = all
	MatchedOnly   bool
	Limit         int
	Offset        int
}

// NewPracticeEventsStore creates a new practice events store
func NewPracticeEventsStore(db *Database) *PracticeEventsStore {
	return &PracticeEventsStore{db: db}
}

// Insert stores a new practice event in the database
func (s *PracticeEventsStore) Insert(event *events.PracticeEvent) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid practice event: %w", err)
	}

	snapshotJSON, err := event.SnapshotJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	query := `
		INSERT INTO practice_events (
			uuid, timestamp, transcription,
			matched, sentence_index, sentence_text, match_score,
			snapshot, processing_time_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.DB().Exec(query,
		event.UUID, event.Timestamp, event.Transcription,
		event.Matched, event.SentenceIndex, event.SentenceText, event.MatchScore,
		snapshotJSON, event.ProcessingTime,
	)

	if err != nil {
		return fmt.Errorf("failed to insert practice event: %w", err)
	}

	log.Printf("📝 Stored practice event: %s (matched: %t, mispronounced: %d)",
		event.UUID, event.Matched, event.MispronouncedCount())
	return nil
}

// GetByUUID retrieves a practice event by its UUID
func (s *PracticeEventsStore) GetByUUID(uuid string) (*events.PracticeEvent, error) {
	query := `
		SELECT uuid, timestamp, transcription,
		       matched, sentence_index, sentence_text, match_score,
		       snapshot, processing_time_ms
		FROM practice_events
		WHERE uuid = ?`

	row := s.db.DB().QueryRow(query, uuid)
	return s.scanPracticeEvent(row)
}

// List retrieves practice events with pagination and filtering, newest
// first.
func (s *PracticeEventsStore) List(options ListOptions) ([]*events.PracticeEvent, error) {
	query, args := s.buildListQuery(options)

	rows, err := s.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query practice events: %w", err)
	}
	defer rows.Close()

	var eventsList []*events.PracticeEvent
	for rows.Next() {
		event, err := s.scanPracticeEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan practice event: %w", err)
		}
		eventsList = append(eventsList, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating practice events: %w", err)
	}

	return eventsList, nil
}

// Count returns the total number of practice events matching the filter
func (s *PracticeEventsStore) Count(options ListOptions) (int64, error) {
	query := "SELECT COUNT(*) FROM practice_events"
	where, args := s.buildWhere(options)
	query += where

	var count int64
	if err := s.db.DB().QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count practice events: %w", err)
	}

	return count, nil
}

func (s *PracticeEventsStore) buildListQuery(options ListOptions) (string, []interface{}) {
	query := `
		SELECT uuid, timestamp, transcription,
		       matched, sentence_index, sentence_text, match_score,
		       snapshot, processing_time_ms
		FROM practice_events`

	where, args := s.buildWhere(options)
	query += where
	query += " ORDER BY timestamp DESC"

	if options.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, options.Limit)
	}
	if options.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, options.Offset)
	}

	return query, args
}

func (s *PracticeEventsStore) buildWhere(options ListOptions) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if options.MatchedOnly {
		conditions = append(conditions, "matched = 1")
	}
	if options.SentenceIndex != nil {
		conditions = append(conditions, "sentence_index = ?")
		args = append(args, *options.SentenceIndex)
	}

	if len(conditions) == 0 {
		return "", args
	}

	where := " WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}
	return where, args
}

// rowScanner abstracts sql.Row and sql.Rows for scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PracticeEventsStore) scanPracticeEvent(row rowScanner) (*events.PracticeEvent, error) {
	var event events.PracticeEvent
	var snapshotJSON string

	err := row.Scan(
		&event.UUID, &event.Timestamp, &event.Transcription,
		&event.Matched, &event.SentenceIndex, &event.SentenceText, &event.MatchScore,
		&snapshotJSON, &event.ProcessingTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("practice event not found")
		}
		return nil, err
	}

	if err := event.SetSnapshotFromJSON(snapshotJSON); err != nil {
		return nil, err
	}

	return &event, nil
}
