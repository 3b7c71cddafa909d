package guide

import (
	"context"
	"errors"
	"time"

	"github.com/dilitS/travel-conductor-ai-sub000/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the postgres-backed SessionBackend.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSession(ctx context.Context, tripID, userID string) (string, error) {
	id := uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO guide_sessions (id, trip_id, user_id, status)
		VALUES ($1,$2,$3,'active')
		RETURNING started_at
	`, id, tripID, userID)
	var startedAt time.Time
	if err := row.Scan(&startedAt); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateLocation(ctx context.Context, sessionID string, fix GeoFix) error {
	_, err := s.db.Exec(ctx, `
		UPDATE guide_sessions
		SET last_location=ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, updated_at=now()
		WHERE id=$1 AND status='active'
	`, sessionID, fix.Lng, fix.Lat)
	return err
}

func (s *Store) MarkAutoplayed(ctx context.Context, sessionID, eventID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO guide_session_events (session_id, event_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, sessionID, eventID)
	return err
}

func (s *Store) EndSession(ctx context.Context, sessionID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE guide_sessions
		SET status='ended', ended_at=now()
		WHERE id=$1 AND status='active'
	`, sessionID)
	return err
}

// GetSession returns the active session for the trip and user, or nil when
// there is none.
func (s *Store) GetSession(ctx context.Context, tripID, userID string) (*Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, trip_id, user_id, status,
		       ST_Y(last_location::geometry), ST_X(last_location::geometry),
		       started_at, updated_at
		FROM guide_sessions
		WHERE trip_id=$1 AND user_id=$2 AND status='active'
		ORDER BY started_at DESC
		LIMIT 1
	`, tripID, userID)

	var session Session
	var lat, lng *float64
	if err := row.Scan(&session.ID, &session.TripID, &session.UserID, &session.Status, &lat, &lng, &session.StartedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if lat != nil && lng != nil {
		session.LastFix = &GeoFix{Lat: *lat, Lng: *lng, Timestamp: session.UpdatedAt}
	}

	rows, err := s.db.Query(ctx, `
		SELECT event_id FROM guide_session_events
		WHERE session_id=$1
		ORDER BY played_at
	`, session.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		if err := rows.Scan(&eventID); err != nil {
			return nil, err
		}
		session.PlayedEvents = append(session.PlayedEvents, eventID)
	}
	return &session, nil
}
