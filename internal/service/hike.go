package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/hike-planner/internal/apperror"
	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/repository"
)

const MaxTrailNameLength = 200

// LogHikeInput is the body of a log-hike request.
type LogHikeInput struct {
	TrailName       string   `json:"trail_name" validate:"required,max=200"`
	DistanceKm      *float64 `json:"distance_km" validate:"required,gte=0"`
	DurationMinutes int      `json:"duration_minutes" validate:"gt=0"`
	Difficulty      string   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	ElevationGainM  *float64 `json:"elevation_gain_m" validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes"`
	UserID          string   `json:"user_id" validate:"required"`
}

type HikeService struct {
	repo   repository.HikeRepository
	logger *slog.Logger
}

func NewHikeService(repo repository.HikeRepository, logger *slog.Logger) *HikeService {
	return &HikeService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and stores a hike. The store assigns ID and CreatedAt.
func (s *HikeService) Create(ctx context.Context, in LogHikeInput) (*model.Hike, error) {
	in.TrailName = strings.TrimSpace(in.TrailName)
	in.UserID = strings.TrimSpace(in.UserID)
	in.Difficulty = strings.ToLower(strings.TrimSpace(in.Difficulty))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hike := &model.Hike{
		TrailName:       in.TrailName,
		DistanceKm:      *in.DistanceKm,
		DurationMinutes: in.DurationMinutes,
		Difficulty:      in.Difficulty,
		ElevationGainM:  in.ElevationGainM,
		Notes:           in.Notes,
		UserID:          in.UserID,
	}

	if err := s.repo.CreateHike(ctx, hike); err != nil {
		s.logger.Error("failed to log hike",
			slog.String("user_id", in.UserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("logging hike: %w", err)
	}

	s.logger.Info("hike logged",
		slog.String("id", hike.ID),
		slog.String("user_id", hike.UserID),
		slog.String("trail", hike.TrailName),
	)
	return hike, nil
}

// ListByOwner returns every hike of ownerID, newest first.
func (s *HikeService) ListByOwner(ctx context.Context, ownerID string) ([]model.Hike, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, apperror.ValidationFailed("user_id", "user_id is required")
	}

	hikes, err := s.repo.ListHikesByUser(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list hikes",
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing hikes: %w", err)
	}
	return hikes, nil
}

// GetByID returns apperror.ErrNotFound for unknown or malformed ids.
func (s *HikeService) GetByID(ctx context.Context, id string) (*model.Hike, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "hike ID is required")
	}
	return s.repo.GetHikeByID(ctx, id)
}

// Delete removes a hike; a second delete of the same id is NotFound.
func (s *HikeService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "hike ID is required")
	}

	if err := s.repo.DeleteHike(ctx, id); err != nil {
		return err
	}

	s.logger.Info("hike deleted", slog.String("id", id))
	return nil
}
