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

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/loqalabs/loqa-pronounce/internal/events"
	"github.com/loqalabs/loqa-pronounce/internal/logging"
	"github.com/loqalabs/loqa-pronounce/internal/storage"
)

// PracticeEventsHandler handles HTTP requests for practice events
type PracticeEventsHandler struct {
	store *storage.PracticeEventsStore
}

// NewPracticeEventsHandler creates a new practice events handler
func NewPracticeEventsHandler(store *storage.PracticeEventsStore) *PracticeEventsHandler {
	return &PracticeEventsHandler{store: store}
}

// ListPracticeEventsResponse represents the response for listing practice events
type ListPracticeEventsResponse struct {
	Events     []*events.PracticeEvent `json:"events"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int                     `json:"total_pages"`
}

// HandlePracticeEvents handles GET /api/practice-events
func (h *PracticeEventsHandler) HandlePracticeEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	page := parseIntParam(query.Get("page"), 1)
	pageSize := parseIntParam(query.Get("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100 // Limit maximum page size
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	options := storage.ListOptions{
		MatchedOnly: query.Get("matched") == "true",
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	}

	if idx := query.Get("sentence_index"); idx != "" {
		if i, err := strconv.Atoi(idx); err == nil {
			options.SentenceIndex = &i
		}
	}

	eventsList, err := h.store.List(options)
	if err != nil {
		logging.LogError(err, "Failed to list practice events")
		http.Error(w, "Failed to list practice events", http.StatusInternalServerError)
		return
	}

	total, err := h.store.Count(options)
	if err != nil {
		logging.LogError(err, "Failed to count practice events")
		http.Error(w, "Failed to count practice events", http.StatusInternalServerError)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	response := ListPracticeEventsResponse{
		Events:     eventsList,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(err, "Failed to encode practice events response")
	}
}

// HandlePracticeEventByID handles GET /api/practice-events/{uuid}
func (h *PracticeEventsHandler) HandlePracticeEventByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uuid := strings.TrimPrefix(r.URL.Path, "/api/practice-events/")
	if uuid == "" || strings.Contains(uuid, "/") {
		http.Error(w, "Event ID is required", http.StatusBadRequest)
		return
	}

	event, err := h.store.GetByUUID(uuid)
	if err != nil {
		http.Error(w, "Practice event not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(event); err != nil {
		logging.LogError(err, "Failed to encode practice event response")
	}
}

func parseIntParam(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return defaultValue
}
