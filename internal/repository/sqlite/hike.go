package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/hike-planner/internal/apperror"
	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/repository"
)

var _ repository.HikeRepository = (*DB)(nil)

const hikeColumns = `id, trail_name, distance_km, duration_minutes, difficulty,
	elevation_gain_m, notes, user_id, created_at`

func scanHike(s scanner) (*model.Hike, error) {
	var h model.Hike
	var elevation sql.NullFloat64
	var notes sql.NullString
	if err := s.Scan(
		&h.ID,
		&h.TrailName,
		&h.DistanceKm,
		&h.DurationMinutes,
		&h.Difficulty,
		&elevation,
		&notes,
		&h.UserID,
		&h.CreatedAt,
	); err != nil {
		return nil, err
	}
	if elevation.Valid {
		v := elevation.Float64
		h.ElevationGainM = &v
	}
	h.Notes = nullToPtr(notes)
	h.CreatedAt = h.CreatedAt.UTC()
	return &h, nil
}

// CreateHike inserts a hike, filling in its ID and the server-side CreatedAt.
func (db *DB) CreateHike(ctx context.Context, hike *model.Hike) error {
	hike.ID = xid.New().String()
	hike.CreatedAt = time.Now().UTC()

	var elevation sql.NullFloat64
	if hike.ElevationGainM != nil {
		elevation = sql.NullFloat64{Float64: *hike.ElevationGainM, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO hikes (id, trail_name, distance_km, duration_minutes, difficulty,
		                    elevation_gain_m, notes, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hike.ID,
		hike.TrailName,
		hike.DistanceKm,
		hike.DurationMinutes,
		hike.Difficulty,
		elevation,
		ptrToNull(hike.Notes),
		hike.UserID,
		hike.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating hike: %w", err)
	}
	return nil
}

// GetHikeByID returns apperror.ErrNotFound for unknown or malformed ids.
func (db *DB) GetHikeByID(ctx context.Context, id string) (*model.Hike, error) {
	if !validID(id) {
		return nil, apperror.NotFound("hike", id)
	}

	h, err := scanHike(db.conn.QueryRowContext(ctx,
		`SELECT `+hikeColumns+` FROM hikes WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("hike", id)
		}
		return nil, fmt.Errorf("sqlite: getting hike %s: %w", id, err)
	}
	return h, nil
}

// ListHikesByUser returns every hike owned by userID, newest first.
// Served by idx_hikes_user_id; there is no pagination.
func (db *DB) ListHikesByUser(ctx context.Context, userID string) ([]model.Hike, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+hikeColumns+`
		 FROM hikes
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing hikes for %s: %w", userID, err)
	}
	defer rows.Close()

	hikes := make([]model.Hike, 0)
	for rows.Next() {
		h, err := scanHike(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning hike row: %w", err)
		}
		hikes = append(hikes, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating hikes: %w", err)
	}

	return hikes, nil
}

// DeleteHike removes one hike. Deleting an id that is already gone returns
// apperror.ErrNotFound rather than silently succeeding.
func (db *DB) DeleteHike(ctx context.Context, id string) error {
	if !validID(id) {
		return apperror.NotFound("hike", id)
	}

	result, err := db.conn.ExecContext(ctx, `DELETE FROM hikes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting hike %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("hike", id)
	}

	return nil
}
