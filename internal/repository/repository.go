// Package repository declares the storage contracts the services depend on.
// internal/repository/sqlite provides the implementation; tests use fakes.
package repository

import (
	"context"

	"github.com/sakif/hike-planner/internal/model"
)

// ListOptions bounds a newest-first listing.
type ListOptions struct {
	Limit int
}

type UserRepository interface {
	// GetByClerkID returns apperror.ErrNotFound when no profile exists.
	GetByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	// GetUserByID looks a profile up by its store id.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// CreateIfAbsent inserts user unless its ClerkID is already stored.
	// It reports whether this call inserted the row; on false the caller
	// should re-read the existing profile.
	CreateIfAbsent(ctx context.Context, user *model.User) (bool, error)
	// UpsertProfile merges the non-nil fields of update into the profile,
	// creating the profile first when absent, and returns the stored result.
	UpsertProfile(ctx context.Context, clerkID string, update model.ProfileUpdate) (*model.User, error)
}

type HikeRepository interface {
	CreateHike(ctx context.Context, hike *model.Hike) error
	GetHikeByID(ctx context.Context, id string) (*model.Hike, error)
	ListHikesByUser(ctx context.Context, userID string) ([]model.Hike, error)
	DeleteHike(ctx context.Context, id string) error
}

type ChatRepository interface {
	CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error
	// ListChatMessages returns messages newest first. An empty userID lists
	// every message.
	ListChatMessages(ctx context.Context, userID string, opts ListOptions) ([]model.ChatMessage, error)
}
