package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenTransaction is one ledger entry. Append-only: no update or delete
// statement targets this table.
type TokenTransaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Type         string    `gorm:"type:varchar(20);not null"` // purchase | usage
	TokenAmount  int64     `gorm:"not null"`                  // signed
	BalanceAfter int64     `gorm:"not null"`
	Description  string    `gorm:"type:text"`
	PaymentRef   *string   `gorm:"type:varchar(255);uniqueIndex"` // external payment id
	ActionRef    *string   `gorm:"type:varchar(255);uniqueIndex"` // usage action id
	CreatedAt    time.Time
}
