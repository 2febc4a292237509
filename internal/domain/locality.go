package domain

// Locality is a static reference entity: seeded once, looked up by id
// when an alert is created.
type Locality struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Province string  `json:"province"`
}
