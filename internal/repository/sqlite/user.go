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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, clerk_id, email, name, profile_image, auth_provider,
	custom_username, first_name, last_name, created_at`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	var username, first, last sql.NullString
	if err := s.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Name,
		&u.ProfileImage,
		&u.AuthProvider,
		&username,
		&first,
		&last,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	u.CustomUsername = nullToPtr(username)
	u.FirstName = nullToPtr(first)
	u.LastName = nullToPtr(last)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// GetByClerkID retrieves a user by the identity provider's id.
// Returns apperror.ErrNotFound if no profile exists yet.
func (db *DB) GetByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE clerk_id = ?`,
		clerkID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", clerkID)
		}
		return nil, fmt.Errorf("sqlite: getting user by clerk_id %s: %w", clerkID, err)
	}
	return u, nil
}

// GetUserByID retrieves a user by the store-generated id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, apperror.NotFound("user", id)
	}

	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// CreateIfAbsent inserts user unless a row with the same clerk_id exists.
//
// ON CONFLICT DO NOTHING makes the insert race-safe: when two first-time
// syncs for the same identity arrive together, exactly one inserts and the
// other sees zero rows affected. On success the caller's struct gets its ID
// and CreatedAt filled in.
func (db *DB) CreateIfAbsent(ctx context.Context, user *model.User) (bool, error) {
	id := xid.New().String()
	createdAt := time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, clerk_id, email, name, profile_image, auth_provider,
		                    custom_username, first_name, last_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(clerk_id) DO NOTHING`,
		id,
		user.ClerkID,
		user.Email,
		user.Name,
		user.ProfileImage,
		user.AuthProvider,
		ptrToNull(user.CustomUsername),
		ptrToNull(user.FirstName),
		ptrToNull(user.LastName),
		createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: inserting user (clerk_id=%s): %w", user.ClerkID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	user.ID = id
	user.CreatedAt = createdAt
	return true, nil
}

// UpsertProfile merges a partial profile update in one statement.
//
// A missing profile is created with empty identity fields; an existing one
// keeps every column whose update field is nil (COALESCE with the stored
// value). The stored row is read back and returned.
func (db *DB) UpsertProfile(ctx context.Context, clerkID string, update model.ProfileUpdate) (*model.User, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, clerk_id, custom_username, first_name, last_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(clerk_id) DO UPDATE SET
		     custom_username = COALESCE(excluded.custom_username, users.custom_username),
		     first_name      = COALESCE(excluded.first_name, users.first_name),
		     last_name       = COALESCE(excluded.last_name, users.last_name)`,
		xid.New().String(),
		clerkID,
		ptrToNull(update.CustomUsername),
		ptrToNull(update.FirstName),
		ptrToNull(update.LastName),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: upserting profile (clerk_id=%s): %w", clerkID, err)
	}

	return db.GetByClerkID(ctx, clerkID)
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func ptrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
