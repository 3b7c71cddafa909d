package guide

import "context"

// SessionBackend is the remote side of a walkthrough. Each call is an
// independent request-response operation; the coordinator never retries.
type SessionBackend interface {
	CreateSession(ctx context.Context, tripID, userID string) (string, error)
	UpdateLocation(ctx context.Context, sessionID string, fix GeoFix) error
	MarkAutoplayed(ctx context.Context, sessionID, eventID string) error
	EndSession(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, tripID, userID string) (*Session, error)
}

// SpeechCallbacks are invoked by the player around one utterance.
type SpeechCallbacks struct {
	OnStart func()
	OnDone  func()
	OnError func(error)
}

// NarrationPlayer speaks at most one utterance at a time.
type NarrationPlayer interface {
	Speak(text string, cb SpeechCallbacks)
	Stop()
	IsSpeaking() bool
}

// LocationSource pushes an already-throttled stream of fixes through the
// callback handed to Start.
type LocationSource interface {
	Start(func(GeoFix)) bool
	Stop()
}
