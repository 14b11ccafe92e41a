package entity

import (
	"time"
)

// IdempotencyKey stores processed requests to prevent duplicates
type IdempotencyKey struct {
	Key          string    `gorm:"primaryKey;size:255"` // The idempotency key from client
	Endpoint     string    `gorm:"primaryKey;size:255"` // API endpoint (e.g., "POST /api/v1/invoices")
	ResponseCode int       `gorm:"not null"`            // HTTP status code of original response
	ResponseBody string    `gorm:"type:text"`           // JSON response body (cached)
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
