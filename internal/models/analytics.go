// internal/models/analytics.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchEvent is appended once per completed search and never mutated.
type SearchEvent struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Query       string    `json:"query" gorm:"type:text;not null"`
	LatencyMs   int       `json:"latency_ms" gorm:"not null"`
	ResultCount int       `json:"result_count" gorm:"not null"`
	At          time.Time `json:"at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SearchEvent) TableName() string {
	return "analytics_search_events"
}

type AuditLog struct {
	ID      int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID  *uuid.UUID `json:"user_id" gorm:"type:uuid"`
	Action  string     `json:"action" gorm:"size:100;not null"`
	Details JSONB      `json:"details" gorm:"type:jsonb"`
	At      time.Time  `json:"at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

const (
	AuditActionUserCreated        = "user_created"
	AuditActionSavedToggled       = "saved_toggled"
	AuditActionPreferencesUpdated = "preferences_updated"
)
