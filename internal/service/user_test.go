package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/hike-planner/internal/apperror"
	"github.com/sakif/hike-planner/internal/model"
)

func newTestUserService() (*UserService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewUserService(repo, testLogger()), repo
}

func validSync(clerkID string) SyncUserInput {
	return SyncUserInput{
		ClerkID:      clerkID,
		Email:        "a@x.io",
		Name:         strPtr("Ann"),
		ProfileImage: strPtr("https://img.example/ann.png"),
		AuthProvider: "google",
	}
}

// =========================================================================
// Sync
// =========================================================================

func TestSync_CreatesOnFirstSight(t *testing.T) {
	svc, _ := newTestUserService()

	user, isNew, err := svc.Sync(context.Background(), validSync("u1"))
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "u1", user.ClerkID)
	assert.Equal(t, "a@x.io", user.Email)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "google", user.AuthProvider)
	assert.Nil(t, user.CustomUsername)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestSync_SecondCallReturnsSameRecord(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	first, isNew, err := svc.Sync(ctx, validSync("u1"))
	require.NoError(t, err)
	require.True(t, isNew)

	changed := validSync("u1")
	changed.Email = "other@x.io"
	second, isNew, err := svc.Sync(ctx, changed)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "a@x.io", second.Email, "existing profile must be returned unchanged")
	assert.Equal(t, 1, repo.createCalls)
}

func TestSync_TrimsIdentityFields(t *testing.T) {
	svc, _ := newTestUserService()

	in := validSync(" u3 ")
	in.Email = " a@x.io "
	in.AuthProvider = " google\n"
	user, _, err := svc.Sync(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "u3", user.ClerkID)
	assert.Equal(t, "a@x.io", user.Email)
	assert.Equal(t, "google", user.AuthProvider)
}

func TestSync_AbsentOptionalsBecomeEmpty(t *testing.T) {
	svc, _ := newTestUserService()

	in := validSync("u2")
	in.Name = nil
	in.ProfileImage = nil
	user, _, err := svc.Sync(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "", user.Name)
	assert.Equal(t, "", user.ProfileImage)
}

func TestSync_LostRaceReturnsWinner(t *testing.T) {
	svc, repo := newTestUserService()
	winner := &model.User{ID: "winner-id", ClerkID: "u1", Email: "first@x.io", AuthProvider: "apple"}
	repo.raceWinner = winner

	user, isNew, err := svc.Sync(context.Background(), validSync("u1"))
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "winner-id", user.ID)
	assert.Equal(t, "first@x.io", user.Email)
}

func TestSync_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    func() SyncUserInput
		field string
	}{
		{"missing clerk id", func() SyncUserInput { return validSync("") }, "clerk_id"},
		{"blank clerk id", func() SyncUserInput { return validSync("   ") }, "clerk_id"},
		{"missing email", func() SyncUserInput { in := validSync("u1"); in.Email = ""; return in }, "email"},
		{"blank email", func() SyncUserInput { in := validSync("u1"); in.Email = "  \t"; return in }, "email"},
		{"missing provider", func() SyncUserInput { in := validSync("u1"); in.AuthProvider = ""; return in }, "auth_provider"},
		{"blank provider", func() SyncUserInput { in := validSync("u1"); in.AuthProvider = " "; return in }, "auth_provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestUserService()
			_, _, err := svc.Sync(context.Background(), tt.in())
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
			assert.Zero(t, repo.createCalls)
		})
	}
}

func TestSync_StoreFailure(t *testing.T) {
	svc, repo := newTestUserService()
	repo.createErr = errStoreDown

	_, _, err := svc.Sync(context.Background(), validSync("u1"))
	assert.ErrorIs(t, err, errStoreDown)
}

// =========================================================================
// Get
// =========================================================================

func TestGet_UnknownReturnsDefaultWithoutPersisting(t *testing.T) {
	svc, repo := newTestUserService()

	user, err := svc.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", user.ClerkID)
	assert.Nil(t, user.CustomUsername)
	assert.Empty(t, repo.byClerk)
}

func TestGet_Existing(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	created, _, err := svc.Sync(ctx, validSync("u1"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGet_StoreFailureIsNotMasked(t *testing.T) {
	svc, repo := newTestUserService()
	repo.getErr = errStoreDown

	_, err := svc.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestGetByID_KeepsNotFound(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// Update
// =========================================================================

func TestUpdate_NoFieldsIsInvalidAndWritesNothing(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()
	_, _, err := svc.Sync(ctx, validSync("u1"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "u1", UpdateUserInput{})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, repo.upsertCalls)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got.CustomUsername)
}

func TestUpdate_OneFieldPreservesOthers(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "u1", UpdateUserInput{FirstName: strPtr("Ann"), LastName: strPtr("Lee")})
	require.NoError(t, err)

	user, err := svc.Update(ctx, "u1", UpdateUserInput{CustomUsername: strPtr("  trailAnn ")})
	require.NoError(t, err)
	require.NotNil(t, user.CustomUsername)
	assert.Equal(t, "trailAnn", *user.CustomUsername)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Ann", *user.FirstName)
	require.NotNil(t, user.LastName)
	assert.Equal(t, "Lee", *user.LastName)
}

func TestUpdate_AfterSyncKeepsSyncedFields(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	synced, _, err := svc.Sync(ctx, validSync("u1"))
	require.NoError(t, err)

	user, err := svc.Update(ctx, "u1", UpdateUserInput{CustomUsername: strPtr("ann")})
	require.NoError(t, err)
	assert.Equal(t, synced.ID, user.ID)
	assert.Equal(t, "a@x.io", user.Email)
}

func TestUpdate_UsernameTooLong(t *testing.T) {
	svc, repo := newTestUserService()
	long := make([]byte, MaxUsernameLength+1)
	for i := range long {
		long[i] = 'a'
	}

	_, err := svc.Update(context.Background(), "u1", UpdateUserInput{CustomUsername: strPtr(string(long))})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, repo.upsertCalls)
}

func TestUpdate_StoreFailure(t *testing.T) {
	svc, repo := newTestUserService()
	repo.upsertErr = errStoreDown

	_, err := svc.Update(context.Background(), "u1", UpdateUserInput{FirstName: strPtr("Ann")})
	assert.ErrorIs(t, err, errStoreDown)
}
