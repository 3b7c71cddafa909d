package trip

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

func TestCreateGetUpdateTrip(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	mock.ExpectQuery(`INSERT INTO trips`).
		WithArgs(pgxmock.AnyArg(), "Krakow Weekend", "Krakow", pgxmock.AnyArg(), pgxmock.AnyArg(), "two days in the old town", "", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	created, err := svc.CreateTrip(context.Background(), Trip{
		Title:       "Krakow Weekend",
		City:        "Krakow",
		Description: "two days in the old town",
		CreatedBy:   "user-1",
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected trip id")
	}

	start := time.Now()
	end := start.Add(48 * time.Hour)
	mock.ExpectQuery(`SELECT id, title, city, start_date, end_date, description, cover_url, created_by, created_at`).
		WithArgs(created.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "city", "start_date", "end_date", "description", "cover_url", "created_by", "created_at"}).
			AddRow(created.ID, "Krakow Weekend", "Krakow", start, end, "two days in the old town", "", "user-1", time.Now()))

	mock.ExpectExec(`UPDATE trips`).
		WithArgs(created.ID, "Krakow Long Weekend", "Krakow", pgxmock.AnyArg(), pgxmock.AnyArg(), "two days in the old town", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := svc.UpdateTrip(context.Background(), created.ID, Trip{Title: "Krakow Long Weekend"})
	if err != nil {
		t.Fatalf("update trip: %v", err)
	}
	if updated.Title != "Krakow Long Weekend" {
		t.Fatalf("unexpected title: %s", updated.Title)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddStepDefaultsRadius(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	mock.ExpectQuery(`INSERT INTO trip_steps`).
		WithArgs(pgxmock.AnyArg(), "trip-1", 1, 1, "Main Square", "The largest medieval town square in Europe.", 19.9373, 50.0617, float64(defaultTriggerRadiusM)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	step, err := svc.AddStep(context.Background(), Step{
		TripID:    "trip-1",
		Day:       1,
		Position:  1,
		Name:      "Main Square",
		Narration: "The largest medieval town square in Europe.",
		Lat:       50.0617,
		Lng:       19.9373,
	})
	if err != nil {
		t.Fatalf("add step: %v", err)
	}
	if step.TriggerRadiusM != defaultTriggerRadiusM {
		t.Fatalf("expected default trigger radius, got %v", step.TriggerRadiusM)
	}
}

func TestStepsOrdered(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	mock.ExpectQuery(`SELECT id, trip_id, day, position, name, narration, ST_Y\(location::geometry\), ST_X\(location::geometry\)`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "day", "position", "name", "narration", "lat", "lng", "trigger_radius_m", "created_at"}).
			AddRow("step-1", "trip-1", 1, 1, "Main Square", "narration one", 50.0617, 19.9373, 75.0, time.Now()).
			AddRow("step-2", "trip-1", 1, 2, "Wawel Castle", "narration two", 50.0541, 19.9352, 75.0, time.Now()))

	steps, err := svc.Steps(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	if len(steps) != 2 || steps[0].ID != "step-1" || steps[1].ID != "step-2" {
		t.Fatalf("unexpected steps: %+v", steps)
	}
}

func TestListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	mock.ExpectQuery(`SELECT id, title, city, start_date, end_date, description, cover_url, created_by, created_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "city", "start_date", "end_date", "description", "cover_url", "created_by", "created_at"}).
			AddRow("trip-1", "Krakow Weekend", "Krakow", time.Now(), time.Now(), "", "", "user-1", time.Now()))

	trips, err := svc.ListByUser(context.Background(), "user-1")
	if err != nil || len(trips) != 1 {
		t.Fatalf("list by user: %v", err)
	}
}

func TestDeleteTripAndStep(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	mock.ExpectExec(`DELETE FROM trips`).WithArgs("trip-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := svc.DeleteTrip(context.Background(), "trip-1"); err != nil {
		t.Fatalf("delete trip: %v", err)
	}

	mock.ExpectExec(`DELETE FROM trip_steps`).WithArgs("step-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := svc.DeleteStep(context.Background(), "step-1"); err != nil {
		t.Fatalf("delete step: %v", err)
	}
}

func TestCreateTripError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO trips`).
		WithArgs(pgxmock.AnyArg(), "Trip", "", pgxmock.AnyArg(), pgxmock.AnyArg(), "", "", "user-1").
		WillReturnError(errQuery)

	svc := NewService(mock)
	if _, err := svc.CreateTrip(context.Background(), Trip{Title: "Trip", CreatedBy: "user-1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStepsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, trip_id, day, position, name, narration`).
		WithArgs("trip-err").
		WillReturnError(errQuery)

	svc := NewService(mock)
	if _, err := svc.Steps(context.Background(), "trip-err"); err == nil {
		t.Fatalf("expected error")
	}
}

var errQuery = errors.New("query error")
