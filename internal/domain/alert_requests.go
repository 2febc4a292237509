package domain

type CreateAlertRequest struct {
	Type        AlertType  `json:"type" validate:"required,alert_type"`
	LocalityID  string     `json:"locality_id" validate:"required"`
	Coordinates [2]float64 `json:"coordinates"` // [lat, lng], checked below
	Lat         float64    `json:"-" validate:"bounds_lat"`
	Lng         float64    `json:"-" validate:"bounds_lng"`
	Description string     `json:"description" validate:"required,min=10,max=500"`
	Severity    int        `json:"severity" validate:"required,min=1,max=3"`
	ImageURL    string     `json:"image_url,omitempty" validate:"omitempty,url"`
}

type VoteAlertRequest struct {
	VoteType VoteType `json:"vote_type" validate:"required,vote_type"`
}

// AlertFilters narrows listings. The 24h freshness window is applied
// unconditionally by the storage layer and is not a filter here.
type AlertFilters struct {
	Type          AlertType
	LocalityID    string
	IncludeHidden bool
}

// IsDefault reports whether the filters match the cached default listing
// (no type/locality narrowing, hidden excluded).
func (f AlertFilters) IsDefault() bool {
	return f.Type == "" && f.LocalityID == "" && !f.IncludeHidden
}
