package trip

import (
	"context"
	"time"

	"github.com/dilitS/travel-conductor-ai-sub000/internal/db"

	"github.com/google/uuid"
)

const defaultTriggerRadiusM = 75

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateTrip(ctx context.Context, input Trip) (Trip, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, title, city, start_date, end_date, description, cover_url, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, input.ID, input.Title, input.City, timePtr(input.StartDate), timePtr(input.EndDate), input.Description, input.CoverURL, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Trip{}, err
	}
	return input, nil
}

func (s *Service) UpdateTrip(ctx context.Context, id string, patch Trip) (Trip, error) {
	trip, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if patch.Title != "" {
		trip.Title = patch.Title
	}
	if patch.City != "" {
		trip.City = patch.City
	}
	if !patch.StartDate.IsZero() {
		trip.StartDate = patch.StartDate
	}
	if !patch.EndDate.IsZero() {
		trip.EndDate = patch.EndDate
	}
	if patch.Description != "" {
		trip.Description = patch.Description
	}
	if patch.CoverURL != "" {
		trip.CoverURL = patch.CoverURL
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trips
		SET title=$2, city=$3, start_date=$4, end_date=$5, description=$6, cover_url=$7
		WHERE id=$1
	`, trip.ID, trip.Title, trip.City, timePtr(trip.StartDate), timePtr(trip.EndDate), trip.Description, trip.CoverURL)
	if err != nil {
		return Trip{}, err
	}
	return trip, nil
}

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, title, city, start_date, end_date, description, cover_url, created_by, created_at
		FROM trips WHERE id=$1
	`, id)
	var trip Trip
	if err := row.Scan(&trip.ID, &trip.Title, &trip.City, &trip.StartDate, &trip.EndDate, &trip.Description, &trip.CoverURL, &trip.CreatedBy, &trip.CreatedAt); err != nil {
		return Trip{}, err
	}
	return trip, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, city, start_date, end_date, description, cover_url, created_by, created_at
		FROM trips WHERE created_by=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.Title, &t.City, &t.StartDate, &t.EndDate, &t.Description, &t.CoverURL, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (s *Service) DeleteTrip(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id)
	return err
}

func (s *Service) AddStep(ctx context.Context, step Step) (Step, error) {
	step.ID = uuid.NewString()
	if step.TriggerRadiusM <= 0 {
		step.TriggerRadiusM = defaultTriggerRadiusM
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO trip_steps (id, trip_id, day, position, name, narration, location, trigger_radius_m)
		VALUES ($1,$2,$3,$4,$5,$6, ST_SetSRID(ST_MakePoint($7,$8), 4326)::geography, $9)
		RETURNING created_at
	`, step.ID, step.TripID, step.Day, step.Position, step.Name, step.Narration, step.Lng, step.Lat, step.TriggerRadiusM)
	if err := row.Scan(&step.CreatedAt); err != nil {
		return Step{}, err
	}
	return step, nil
}

func (s *Service) Steps(ctx context.Context, tripID string) ([]Step, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, day, position, name, narration, ST_Y(location::geometry), ST_X(location::geometry),
		       COALESCE(trigger_radius_m,0), created_at
		FROM trip_steps WHERE trip_id=$1
		ORDER BY day, position
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		if err := rows.Scan(&st.ID, &st.TripID, &st.Day, &st.Position, &st.Name, &st.Narration, &st.Lat, &st.Lng, &st.TriggerRadiusM, &st.CreatedAt); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func (s *Service) DeleteStep(ctx context.Context, stepID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM trip_steps WHERE id=$1`, stepID)
	return err
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
