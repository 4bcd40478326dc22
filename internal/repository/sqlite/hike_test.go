package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/hike-planner/internal/apperror"
	"github.com/sakif/hike-planner/internal/model"
)

func createTestHike(t *testing.T, db *DB, userID, trail string) *model.Hike {
	t.Helper()
	hike := &model.Hike{
		TrailName:       trail,
		DistanceKm:      5,
		DurationMinutes: 90,
		Difficulty:      model.DifficultyEasy,
		UserID:          userID,
	}
	if err := db.CreateHike(context.Background(), hike); err != nil {
		t.Fatalf("failed to create test hike: %v", err)
	}
	return hike
}

func TestCreateHike_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	before := time.Now()

	elevation := 420.5
	notes := "windy on the ridge"
	hike := &model.Hike{
		TrailName:       "Ridge Loop",
		DistanceKm:      8.2,
		DurationMinutes: 140,
		Difficulty:      model.DifficultyMedium,
		ElevationGainM:  &elevation,
		Notes:           &notes,
		UserID:          "u1",
	}
	if err := db.CreateHike(ctx, hike); err != nil {
		t.Fatalf("CreateHike() error = %v", err)
	}
	if hike.ID == "" {
		t.Fatal("CreateHike() did not set hike.ID")
	}

	found, err := db.GetHikeByID(ctx, hike.ID)
	if err != nil {
		t.Fatalf("GetHikeByID() error = %v", err)
	}

	if found.TrailName != "Ridge Loop" {
		t.Errorf("TrailName = %q, want %q", found.TrailName, "Ridge Loop")
	}
	if found.DistanceKm != 8.2 {
		t.Errorf("DistanceKm = %v, want 8.2", found.DistanceKm)
	}
	if found.DurationMinutes != 140 {
		t.Errorf("DurationMinutes = %d, want 140", found.DurationMinutes)
	}
	if found.Difficulty != model.DifficultyMedium {
		t.Errorf("Difficulty = %q, want %q", found.Difficulty, model.DifficultyMedium)
	}
	if found.ElevationGainM == nil || *found.ElevationGainM != 420.5 {
		t.Errorf("ElevationGainM = %v, want 420.5", found.ElevationGainM)
	}
	if found.Notes == nil || *found.Notes != notes {
		t.Errorf("Notes = %v, want %q", found.Notes, notes)
	}
	if found.UserID != "u1" {
		t.Errorf("UserID = %q, want %q", found.UserID, "u1")
	}
	if found.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, want no earlier than %v", found.CreatedAt, before)
	}
}

func TestCreateHike_OptionalFieldsStayNil(t *testing.T) {
	db := newTestDB(t)
	hike := createTestHike(t, db, "u1", "Creek Walk")

	found, err := db.GetHikeByID(context.Background(), hike.ID)
	if err != nil {
		t.Fatalf("GetHikeByID() error = %v", err)
	}
	if found.ElevationGainM != nil {
		t.Errorf("ElevationGainM = %v, want nil", *found.ElevationGainM)
	}
	if found.Notes != nil {
		t.Errorf("Notes = %q, want nil", *found.Notes)
	}
}

func TestGetHikeByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name string
		id   string
	}{
		{"well-formed but unknown", xid.New().String()},
		{"malformed", "not-an-object-id"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.GetHikeByID(context.Background(), tt.id)
			if !errors.Is(err, apperror.ErrNotFound) {
				t.Errorf("GetHikeByID(%q) error = %v, want ErrNotFound", tt.id, err)
			}
		})
	}
}

func TestListHikesByUser(t *testing.T) {
	db := newTestDB(t)
	createTestHike(t, db, "u1", "first")
	createTestHike(t, db, "u2", "someone else")
	last := createTestHike(t, db, "u1", "second")

	hikes, err := db.ListHikesByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListHikesByUser() error = %v", err)
	}
	if len(hikes) != 2 {
		t.Fatalf("ListHikesByUser() returned %d hikes, want 2", len(hikes))
	}
	if hikes[0].ID != last.ID {
		t.Errorf("first hike = %q, want newest %q", hikes[0].ID, last.ID)
	}
	for _, h := range hikes {
		if h.UserID != "u1" {
			t.Errorf("hike %s belongs to %q, want u1", h.ID, h.UserID)
		}
	}
}

func TestListHikesByUser_Empty(t *testing.T) {
	db := newTestDB(t)

	hikes, err := db.ListHikesByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListHikesByUser() error = %v", err)
	}
	if hikes == nil {
		t.Error("ListHikesByUser() returned nil, want empty slice")
	}
	if len(hikes) != 0 {
		t.Errorf("ListHikesByUser() returned %d hikes, want 0", len(hikes))
	}
}

func TestDeleteHike_SecondDeleteIsNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	hike := createTestHike(t, db, "u1", "to delete")

	if err := db.DeleteHike(ctx, hike.ID); err != nil {
		t.Fatalf("DeleteHike() error = %v", err)
	}

	_, err := db.GetHikeByID(ctx, hike.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetHikeByID() after delete: error = %v, want ErrNotFound", err)
	}

	err = db.DeleteHike(ctx, hike.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteHike() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteHike_MalformedID(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteHike(context.Background(), "bogus")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteHike() error = %v, want ErrNotFound", err)
	}
}
