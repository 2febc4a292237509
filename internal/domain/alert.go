package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/ginona/tucalerta/pkg/e"
)

type AlertType string

const (
	AlertFlood       AlertType = "flood"
	AlertPowerOutage AlertType = "power_outage"
)

type VoteType string

const (
	VoteConfirm VoteType = "confirm"
	VoteReject  VoteType = "reject"
)

const (
	// VerifiedThreshold marks an alert as community-verified once
	// ValidationScore reaches it.
	VerifiedThreshold = 3
	// AutoHideThreshold hides an alert from default listings once
	// ValidationScore falls to it.
	AutoHideThreshold = -3
)

type Alert struct {
	ID          uuid.UUID `json:"id"`
	Type        AlertType `json:"type"`
	LocalityID  string    `json:"locality_id"`
	Locality    *Locality `json:"locality,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Description string    `json:"description"`
	Severity    int       `json:"severity"` // 1..3

	Confirmations   int  `json:"confirmations"`
	Rejections      int  `json:"rejections"`
	ValidationScore int  `json:"validation_score"`
	IsVerified      bool `json:"is_verified"`
	AutoHidden      bool `json:"auto_hidden"`

	// DeviceFingerprints holds the device ids that already voted.
	// Membership is what matters, ordering does not.
	DeviceFingerprints []string `json:"device_fingerprints"`
	ReportedBy         string   `json:"reported_by"`

	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasVoted reports whether deviceID is already in the voter set.
func (a *Alert) HasVoted(deviceID string) bool {
	for _, fp := range a.DeviceFingerprints {
		if fp == deviceID {
			return true
		}
	}
	return false
}

// ApplyVote registers one vote from deviceID and recomputes the derived
// state. It is the only mutation path for the vote counters.
func (a *Alert) ApplyVote(deviceID string, vt VoteType) error {
	if a.HasVoted(deviceID) {
		return e.ErrAlreadyVoted
	}
	if a.ReportedBy == deviceID {
		return e.ErrSelfVote
	}

	switch vt {
	case VoteConfirm:
		a.Confirmations++
	case VoteReject:
		a.Rejections++
	default:
		return e.ErrInvalidInput
	}

	a.DeviceFingerprints = append(a.DeviceFingerprints, deviceID)
	a.recalcValidation()
	return nil
}

// recalcValidation derives score and visibility flags from the counters.
// Nothing else may set ValidationScore, IsVerified or AutoHidden.
func (a *Alert) recalcValidation() {
	a.ValidationScore = a.Confirmations - a.Rejections
	a.IsVerified = a.ValidationScore >= VerifiedThreshold
	a.AutoHidden = a.ValidationScore <= AutoHideThreshold
}
