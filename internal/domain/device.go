package domain

import "time"

// DeviceValidation is an abuse-throttling record keyed by a
// client-generated device id. It is not an identity mechanism: the id is
// self-asserted and trivially resettable by the client.
type DeviceValidation struct {
	DeviceID     string     `json:"device_id"`
	LastReportAt *time.Time `json:"last_report_at,omitempty"`
	LastVoteAt   *time.Time `json:"last_vote_at,omitempty"`
}

// CanReportAt reports whether the device is past its report cooldown at
// the given instant. A device with no prior report can always report.
func (d *DeviceValidation) CanReportAt(now time.Time, cooldown time.Duration) bool {
	if d == nil || d.LastReportAt == nil {
		return true
	}
	return now.Sub(*d.LastReportAt) >= cooldown
}
