package models

import (
	"time"

	"github.com/google/uuid"
)

// FailedDeduction row. user_id is text, not uuid: deletion cleanup
// replaces it with the DELETED sentinel.
type FailedDeduction struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ActionID       string    `gorm:"type:varchar(255);not null;index"`
	UserID         string    `gorm:"type:varchar(255);not null;index"`
	Parameters     string    `gorm:"type:text"`
	ErrorMessage   string    `gorm:"type:text"`
	Resolved       bool      `gorm:"not null;default:false;index"`
	ResolvedAt     *time.Time
	ResolutionNote *string `gorm:"type:text"`
	RetryCount     int     `gorm:"not null;default:0"`
	CreatedAt      time.Time
}
