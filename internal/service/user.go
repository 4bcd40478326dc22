// Package service holds the business rules between the HTTP handlers and the
// repositories: input shape checks, defaults, and the sync/upsert policies.
//
// Services take repository interfaces, never the concrete store, so tests can
// swap in the in-memory fakes from the _test files.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/hike-planner/internal/apperror"
	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/repository"
)

const MaxUsernameLength = 50

// SyncUserInput is what the mobile app sends after every sign-in.
type SyncUserInput struct {
	ClerkID      string  `json:"clerk_id" validate:"required,max=128"`
	Email        string  `json:"email" validate:"required"`
	Name         *string `json:"name"`
	ProfileImage *string `json:"profile_image"`
	AuthProvider string  `json:"auth_provider" validate:"required"`
}

// UpdateUserInput is a partial profile update; nil fields are left alone.
type UpdateUserInput struct {
	CustomUsername *string `json:"custom_username"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
}

// UserService owns the user directory.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// Sync returns the stored profile for in.ClerkID, creating it on first sight.
// isNew is true only for the call that created the record. Existing profiles
// are returned unchanged, even if in carries different details.
func (s *UserService) Sync(ctx context.Context, in SyncUserInput) (user *model.User, isNew bool, err error) {
	in.ClerkID = strings.TrimSpace(in.ClerkID)
	in.Email = strings.TrimSpace(in.Email)
	in.AuthProvider = strings.TrimSpace(in.AuthProvider)
	if err := validateStruct(in); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByClerkID(ctx, in.ClerkID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, false, fmt.Errorf("syncing user: %w", err)
	}

	user = &model.User{
		ClerkID:      in.ClerkID,
		Email:        in.Email,
		Name:         valueOrEmpty(in.Name),
		ProfileImage: valueOrEmpty(in.ProfileImage),
		AuthProvider: in.AuthProvider,
	}

	inserted, err := s.repo.CreateIfAbsent(ctx, user)
	if err != nil {
		s.logger.Error("failed to create user",
			slog.String("clerk_id", in.ClerkID),
			slog.String("error", err.Error()),
		)
		return nil, false, fmt.Errorf("syncing user: %w", err)
	}

	if !inserted {
		// A concurrent sync for the same identity won the insert.
		existing, err := s.repo.GetByClerkID(ctx, in.ClerkID)
		if err != nil {
			return nil, false, fmt.Errorf("syncing user: re-reading after conflict: %w", err)
		}
		return existing, false, nil
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("clerk_id", user.ClerkID),
		slog.String("auth_provider", user.AuthProvider),
	)

	return user, true, nil
}

// Get returns the profile for clerkID. An unknown identity is not an error:
// the caller gets a default profile carrying only the clerk id, and nothing
// is written.
func (s *UserService) Get(ctx context.Context, clerkID string) (*model.User, error) {
	clerkID = strings.TrimSpace(clerkID)
	if clerkID == "" {
		return nil, apperror.ValidationFailed("clerk_id", "clerk_id is required")
	}

	user, err := s.repo.GetByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &model.User{ClerkID: clerkID}, nil
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// GetByID looks a profile up by its store id and keeps NotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.repo.GetUserByID(ctx, id)
}

// Update merges the supplied fields, trimmed, into the profile for clerkID,
// creating the profile if needed. It fails with a validation error when no
// field is supplied, without touching the store.
func (s *UserService) Update(ctx context.Context, clerkID string, in UpdateUserInput) (*model.User, error) {
	clerkID = strings.TrimSpace(clerkID)
	if clerkID == "" {
		return nil, apperror.ValidationFailed("clerk_id", "clerk_id is required")
	}

	update := model.ProfileUpdate{
		CustomUsername: trimmed(in.CustomUsername),
		FirstName:      trimmed(in.FirstName),
		LastName:       trimmed(in.LastName),
	}
	if update.Empty() {
		return nil, apperror.ValidationFailed("", "no fields supplied to update")
	}
	if update.CustomUsername != nil && len(*update.CustomUsername) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("custom_username",
			fmt.Sprintf("custom_username must be at most %d characters", MaxUsernameLength))
	}

	user, err := s.repo.UpsertProfile(ctx, clerkID, update)
	if err != nil {
		s.logger.Error("failed to update user",
			slog.String("clerk_id", clerkID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user profile updated", slog.String("clerk_id", clerkID))
	return user, nil
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
