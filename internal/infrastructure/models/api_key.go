package models

import (
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	KeyPrefix  string    `gorm:"type:varchar(20);not null"` // "wtyk_a7f3k9m2p5q"
	KeyHash    string    `gorm:"type:varchar(64);uniqueIndex;not null"` // SHA256 of full key
	IsActive   bool      `gorm:"default:true;not null"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	User       User `gorm:"foreignKey:UserID"`
}
