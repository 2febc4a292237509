package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is an append-only ledger entry. Never updated or deleted; exists
// for audit and duplicate detection.
type Vote struct {
	ID       uuid.UUID `json:"id"`
	AlertID  uuid.UUID `json:"alert_id"`
	DeviceID string    `json:"device_id"`
	Type     VoteType  `json:"vote_type"`
	VotedAt  time.Time `json:"voted_at"`
}
