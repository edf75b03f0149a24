package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event is one entry in the operation audit trail.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`  // e.g. "backup.create", "backup.restore"
	Level     string `json:"level"` // e.g. "info", "warn", "error"
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	RecordEvent(eventType, level, message string)
	GetRecentEvents(limit int) ([]Event, error)
}

// EventService records backup, restore, and cleanup outcomes to the events
// table so there is a durable audit trail of every administrative operation.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// RecordEvent logs a new event to the database. Audit writes must never
// fail the operation they describe, so errors are logged and swallowed.
func (s *EventService) RecordEvent(eventType, level, message string) {
	_, err := s.db.Exec(
		"INSERT INTO events (id, type, level, message) VALUES (?, ?, ?, ?)",
		uuid.New().String(), eventType, level, message,
	)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
