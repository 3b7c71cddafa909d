package guide

import "time"

type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusEnded  SessionStatus = "ended"
)

// GeoFix is a single timestamped location sample. Value type, copied on
// ingestion; the coordinator keeps only the most recent one.
type GeoFix struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one voice-guide walkthrough tying a user, a trip and the
// narration bookkeeping together.
type Session struct {
	ID           string        `json:"id"`
	TripID       string        `json:"trip_id"`
	UserID       string        `json:"user_id"`
	Status       SessionStatus `json:"status"`
	Demo         bool          `json:"demo"`
	LastFix      *GeoFix       `json:"last_fix,omitempty"`
	PlayedEvents []string      `json:"played_events"`
	StartedAt    time.Time     `json:"started_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	EndedAt      time.Time     `json:"ended_at,omitempty"`
}

// StepCue is the per-poll input to the autoplay decision: the candidate
// narration event for the step the traveler is closest to.
type StepCue struct {
	EventID       string  `json:"event_id"`
	Name          string  `json:"name"`
	Narration     string  `json:"narration"`
	DistanceM     float64 `json:"distance_m"`
	Eligible      bool    `json:"eligible"`
	AlreadyPlayed bool    `json:"already_played"`
}

// Decision is the outcome of one autoplay evaluation.
type Decision struct {
	ShouldSpeak bool   `json:"should_speak"`
	EventID     string `json:"event_id,omitempty"`
}

// PlaybackState tracks the single utterance that may be active.
// Playing is true exactly when EventID is set.
type PlaybackState struct {
	Playing bool   `json:"playing"`
	EventID string `json:"event_id,omitempty"`
}
