package models

import (
	"time"

	"github.com/google/uuid"
)

// User row. is_deleted is an explicit terminal flag, not a gorm soft
// delete: deleted rows stay readable for ledger and audit lookups.
type User struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email                string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CurrentTokenBalance  int64     `gorm:"not null;default:0"`
	TotalTokensPurchased int64     `gorm:"not null;default:0"`
	TotalTokensUsed      int64     `gorm:"not null;default:0"`
	BillingCustomerID    *string   `gorm:"type:varchar(255)"`
	IdentityUserID       *string   `gorm:"type:varchar(255)"`
	IsDeleted            bool      `gorm:"not null;default:false;index"`
	DeletedAt            *time.Time
	CreatedAt            time.Time
	LastLoginAt          time.Time
}
