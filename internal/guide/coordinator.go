package guide

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyActive is returned when a session start is attempted while
	// another session is active. Starting never implicitly ends the current
	// session; callers must end it first.
	ErrAlreadyActive = errors.New("guide session already active")

	// ErrBackendUnavailable is returned when the backend rejects session
	// creation. The coordinator keeps no partial session in that case.
	ErrBackendUnavailable = errors.New("guide backend unavailable")
)

// Coordinator owns the lifecycle of one active voice-guide session: whether a
// session exists, the last known position, which narration events already
// played and whether narration is playing right now. One coordinator per
// guide screen; it is not a process-wide singleton.
type Coordinator struct {
	mu       sync.Mutex
	backend  SessionBackend
	player   NarrationPlayer
	session  *activeSession
	playback PlaybackState
}

type activeSession struct {
	id      string
	tripID  string
	userID  string
	demo    bool
	lastFix *GeoFix
	played  map[string]struct{}
	started time.Time
}

func NewCoordinator(backend SessionBackend, player NarrationPlayer) *Coordinator {
	return &Coordinator{backend: backend, player: player}
}

// StartSession creates a live session against the backend. Nothing is stored
// locally until the backend confirms creation.
func (c *Coordinator) StartSession(ctx context.Context, tripID, userID string) (string, error) {
	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return "", ErrAlreadyActive
	}
	c.mu.Unlock()

	id, err := c.backend.CreateSession(ctx, tripID, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &activeSession{
		id:      id,
		tripID:  tripID,
		userID:  userID,
		played:  map[string]struct{}{},
		started: time.Now(),
	}
	return id, nil
}

// StartDemoSession synthesizes a local session that never contacts the
// backend for its whole lifetime. It cannot fail except when a session is
// already active.
func (c *Coordinator) StartDemoSession(tripID, userID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return "", ErrAlreadyActive
	}
	id := uuid.NewString()
	c.session = &activeSession{
		id:      id,
		tripID:  tripID,
		userID:  userID,
		demo:    true,
		played:  map[string]struct{}{},
		started: time.Now(),
	}
	return id, nil
}

// RestoreSession adopts the active backend session for the trip, if any, so a
// relaunched app resumes where it left off. Returns the session id, or empty
// when there is nothing to restore.
func (c *Coordinator) RestoreSession(ctx context.Context, tripID, userID string) (string, error) {
	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return "", ErrAlreadyActive
	}
	c.mu.Unlock()

	remote, err := c.backend.GetSession(ctx, tripID, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if remote == nil || remote.Status != StatusActive {
		return "", nil
	}

	played := make(map[string]struct{}, len(remote.PlayedEvents))
	for _, id := range remote.PlayedEvents {
		played[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &activeSession{
		id:      remote.ID,
		tripID:  remote.TripID,
		userID:  remote.UserID,
		lastFix: remote.LastFix,
		played:  played,
		started: remote.StartedAt,
	}
	return remote.ID, nil
}

// EndSession clears the local session. For live sessions the backend end call
// is best-effort: its failure is logged and local state is cleared anyway, so
// the coordinator can never be stuck in a stale active state. Calling it
// without a session is a no-op.
func (c *Coordinator) EndSession(ctx context.Context) {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.playback = PlaybackState{}
	c.mu.Unlock()

	if session == nil || session.demo {
		return
	}
	if err := c.backend.EndSession(ctx, session.id); err != nil {
		log.Printf("guide: end session %s: %v", session.id, err)
	}
}

// IngestLocation records the fix as the last known position. Live sessions
// forward it to the backend fire-and-forget; a dropped update never rolls
// back the local value. No-op without a session.
func (c *Coordinator) IngestLocation(fix GeoFix) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return
	}
	copied := fix
	c.session.lastFix = &copied
	demo := c.session.demo
	sessionID := c.session.id
	c.mu.Unlock()

	if demo {
		return
	}
	go func() {
		if err := c.backend.UpdateLocation(context.Background(), sessionID, fix); err != nil {
			log.Printf("guide: location update dropped for session %s: %v", sessionID, err)
		}
	}()
}

// FollowLocation subscribes the coordinator to the source's fix stream.
// Stopping the source on teardown remains the caller's job.
func (c *Coordinator) FollowLocation(src LocationSource) bool {
	return src.Start(c.IngestLocation)
}

// EvaluateAutoplay decides whether the cue's narration should fire. Pure
// read, no side effects. Narration is strictly serialized: while anything is
// playing no new trigger fires, even for a different step.
func (c *Coordinator) EvaluateAutoplay(cue *StepCue) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || cue == nil || !cue.Eligible || c.playback.Playing {
		return Decision{}
	}
	if _, done := c.session.played[cue.EventID]; done {
		return Decision{}
	}
	return Decision{ShouldSpeak: true, EventID: cue.EventID}
}

// BeginPlayback starts speaking the event's narration. Caller must have
// checked EvaluateAutoplay; a call while something is playing is ignored.
func (c *Coordinator) BeginPlayback(eventID, text string) {
	c.mu.Lock()
	if c.playback.Playing {
		c.mu.Unlock()
		return
	}
	c.playback = PlaybackState{Playing: true, EventID: eventID}
	c.mu.Unlock()

	c.player.Speak(text, SpeechCallbacks{
		OnDone:  func() { c.OnPlaybackDone(eventID) },
		OnError: func(err error) { c.OnPlaybackError(eventID, err) },
	})
}

// OnPlaybackDone marks the event as played. The local played-set is updated
// before anything else so a subsequent EvaluateAutoplay can never re-trigger
// the same event; the backend mirror is notified fire-and-forget.
func (c *Coordinator) OnPlaybackDone(eventID string) {
	c.mu.Lock()
	c.playback = PlaybackState{}
	if c.session == nil {
		c.mu.Unlock()
		return
	}
	c.session.played[eventID] = struct{}{}
	demo := c.session.demo
	sessionID := c.session.id
	c.mu.Unlock()

	if demo {
		return
	}
	go func() {
		if err := c.backend.MarkAutoplayed(context.Background(), sessionID, eventID); err != nil {
			log.Printf("guide: mark autoplayed dropped for session %s event %s: %v", sessionID, eventID, err)
		}
	}()
}

// OnPlaybackError clears playback without touching the played-set, so a
// narration that failed mid-utterance stays eligible for a retry.
func (c *Coordinator) OnPlaybackError(eventID string, err error) {
	c.mu.Lock()
	c.playback = PlaybackState{}
	c.mu.Unlock()
	log.Printf("guide: playback failed for event %s: %v", eventID, err)
}

// ToggleManualPlayback stops the current utterance if one is playing
// (a manual stop is not "done" and mutates no played-set), otherwise replays
// the cue's narration. Manual replay bypasses the played-set check.
func (c *Coordinator) ToggleManualPlayback(cue *StepCue) {
	c.mu.Lock()
	if c.playback.Playing {
		c.playback = PlaybackState{}
		c.mu.Unlock()
		c.player.Stop()
		return
	}
	if cue == nil || cue.Narration == "" {
		c.mu.Unlock()
		return
	}
	c.playback = PlaybackState{Playing: true, EventID: cue.EventID}
	c.mu.Unlock()

	eventID := cue.EventID
	c.player.Speak(cue.Narration, SpeechCallbacks{
		OnDone:  func() { c.OnPlaybackDone(eventID) },
		OnError: func(err error) { c.OnPlaybackError(eventID, err) },
	})
}

// Snapshot returns a copy of the current session state, or false when no
// session is active.
func (c *Coordinator) Snapshot() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}

	played := make([]string, 0, len(c.session.played))
	for id := range c.session.played {
		played = append(played, id)
	}
	var fix *GeoFix
	if c.session.lastFix != nil {
		copied := *c.session.lastFix
		fix = &copied
	}
	return Session{
		ID:           c.session.id,
		TripID:       c.session.tripID,
		UserID:       c.session.userID,
		Status:       StatusActive,
		Demo:         c.session.demo,
		LastFix:      fix,
		PlayedEvents: played,
		StartedAt:    c.session.started,
	}, true
}

// HasPlayed reports whether the event already played in this session.
func (c *Coordinator) HasPlayed(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return false
	}
	_, done := c.session.played[eventID]
	return done
}

// Playback returns the current playback state.
func (c *Coordinator) Playback() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playback
}
