package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountDeletion is the permanent deletion audit row. Append-only.
type AccountDeletion struct {
	DeletionID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID                  uuid.UUID `gorm:"type:uuid;not null;index"`
	OriginalEmail           string    `gorm:"type:varchar(255);not null"`
	EmailHash               string    `gorm:"type:varchar(64);not null;index"`
	TokensForfeited         int64     `gorm:"not null"`
	TotalTokensPurchased    int64     `gorm:"not null"`
	TotalTokensUsed         int64     `gorm:"not null"`
	BillingCustomerID       *string   `gorm:"type:varchar(255)"`
	BillingDeleted          bool      `gorm:"not null"`
	BillingError            *string   `gorm:"type:text"`
	McpActionsAnonymized    int64     `gorm:"not null;default:0"`
	FailedDeductionsCleaned int64     `gorm:"not null;default:0"`
	AcknowledgedForfeiture  bool      `gorm:"not null"`
	DeletionReason          *string   `gorm:"type:text"`
	DeletedAt               time.Time `gorm:"not null;index"`
	DeletedByIP             *string   `gorm:"type:varchar(64)"`
}
