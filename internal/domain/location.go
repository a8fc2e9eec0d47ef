package domain

// Location is a geographic point with an optional display address.
// Stored as JSONB wherever it appears (trip endpoints, stops).
type Location struct {
	Lat     float64 `json:"lat" validate:"required,latitude"`
	Lng     float64 `json:"lng" validate:"required,longitude"`
	Address string  `json:"address,omitempty"`
}
