package models

import (
	"time"

	"github.com/google/uuid"
)

type McpAction struct {
	ActionID       string    `gorm:"type:varchar(255);primaryKey"` // caller-supplied idempotency key
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ServerName     string    `gorm:"type:varchar(255);not null"`
	ToolName       string    `gorm:"type:varchar(255);not null"`
	Parameters     string    `gorm:"type:text"`
	TokensConsumed int64     `gorm:"not null"`
	Success        bool      `gorm:"not null"`
	ErrorMessage   *string   `gorm:"type:text"`
	CreatedAt      time.Time
}
