package trip

import "time"

type Trip struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	City        string    `json:"city"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Description string    `json:"description"`
	CoverURL    string    `json:"cover_url"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Step is one itinerary stop. Narration is the text the voice guide
// speaks when the traveler enters the trigger radius.
type Step struct {
	ID             string    `json:"id"`
	TripID         string    `json:"trip_id"`
	Day            int       `json:"day"`
	Position       int       `json:"position"`
	Name           string    `json:"name"`
	Narration      string    `json:"narration"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	TriggerRadiusM float64   `json:"trigger_radius_m"`
	CreatedAt      time.Time `json:"created_at"`
}
