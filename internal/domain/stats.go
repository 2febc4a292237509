package domain

// AlertStats summarizes fresh alerts for the admin dashboard.
type AlertStats struct {
	Total            int64            `json:"total"`
	ByType           map[string]int64 `json:"by_type"`
	Verified         int64            `json:"verified"`
	Hidden           int64            `json:"hidden"`
	ReportingDevices int64            `json:"reporting_devices"`
}
