package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
)

var errSave = errors.New("save error")

func TestSaveObject(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO media_objects`).
		WithArgs(pgxmock.AnyArg(), "user-1", "https://media.travelconductor.app/cover_photo/file", KindCoverPhoto).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock)
	id, err := svc.SaveObject(context.Background(), "user-1", "https://media.travelconductor.app/cover_photo/file", KindCoverPhoto)
	if err != nil {
		t.Fatalf("save object: %v", err)
	}
	if id == "" {
		t.Fatalf("expected id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveObjectError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO media_objects`).
		WithArgs(pgxmock.AnyArg(), "user-1", "url", KindPostPhoto).
		WillReturnError(errSave)

	svc := NewService(mock)
	if _, err = svc.SaveObject(context.Background(), "user-1", "url", KindPostPhoto); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidKind(t *testing.T) {
	for _, kind := range []string{KindCoverPhoto, KindNarrationAudio, KindPostPhoto} {
		if !validKind(kind) {
			t.Fatalf("expected %s to be valid", kind)
		}
	}
	if validKind("gpx_track") {
		t.Fatalf("expected unknown kind to be rejected")
	}
}
