package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/hike-planner/internal/apperror"
	"github.com/sakif/hike-planner/internal/assistant"
	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

var errStoreDown = errors.New("store unavailable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// fakeUserRepo is an in-memory repository.UserRepository keyed by clerk id.
type fakeUserRepo struct {
	mu      sync.Mutex
	byClerk map[string]*model.User

	// set to simulate a failing store
	getErr    error
	createErr error
	upsertErr error

	createCalls int
	upsertCalls int
	// raceWinner, when set, is stored just before CreateIfAbsent runs, as if
	// another request inserted the same clerk id first.
	raceWinner *model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byClerk: make(map[string]*model.User)}
}

func (f *fakeUserRepo) GetByClerkID(_ context.Context, clerkID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byClerk[clerkID]
	if !ok {
		return nil, apperror.NotFound("user", clerkID)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byClerk {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) CreateIfAbsent(_ context.Context, user *model.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return false, f.createErr
	}
	if f.raceWinner != nil {
		stored := *f.raceWinner
		f.byClerk[stored.ClerkID] = &stored
		f.raceWinner = nil
	}
	if _, ok := f.byClerk[user.ClerkID]; ok {
		return false, nil
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	stored := *user
	f.byClerk[user.ClerkID] = &stored
	return true, nil
}

func (f *fakeUserRepo) UpsertProfile(_ context.Context, clerkID string, update model.ProfileUpdate) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	u, ok := f.byClerk[clerkID]
	if !ok {
		u = &model.User{ID: xid.New().String(), ClerkID: clerkID, CreatedAt: time.Now().UTC()}
		f.byClerk[clerkID] = u
	}
	if update.CustomUsername != nil {
		u.CustomUsername = strPtr(*update.CustomUsername)
	}
	if update.FirstName != nil {
		u.FirstName = strPtr(*update.FirstName)
	}
	if update.LastName != nil {
		u.LastName = strPtr(*update.LastName)
	}
	copied := *u
	return &copied, nil
}

// fakeHikeRepo is an in-memory repository.HikeRepository.
type fakeHikeRepo struct {
	hikes     map[string]*model.Hike
	createErr error
	listErr   error
}

var _ repository.HikeRepository = (*fakeHikeRepo)(nil)

func newFakeHikeRepo() *fakeHikeRepo {
	return &fakeHikeRepo{hikes: make(map[string]*model.Hike)}
}

func (f *fakeHikeRepo) CreateHike(_ context.Context, hike *model.Hike) error {
	if f.createErr != nil {
		return f.createErr
	}
	hike.ID = xid.New().String()
	hike.CreatedAt = time.Now().UTC()
	stored := *hike
	f.hikes[hike.ID] = &stored
	return nil
}

func (f *fakeHikeRepo) GetHikeByID(_ context.Context, id string) (*model.Hike, error) {
	h, ok := f.hikes[id]
	if !ok {
		return nil, apperror.NotFound("hike", id)
	}
	copied := *h
	return &copied, nil
}

func (f *fakeHikeRepo) ListHikesByUser(_ context.Context, userID string) ([]model.Hike, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]model.Hike, 0)
	for _, h := range f.hikes {
		if h.UserID == userID {
			result = append(result, *h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (f *fakeHikeRepo) DeleteHike(_ context.Context, id string) error {
	if _, ok := f.hikes[id]; !ok {
		return apperror.NotFound("hike", id)
	}
	delete(f.hikes, id)
	return nil
}

// fakeChatRepo keeps messages in insertion order.
type fakeChatRepo struct {
	messages  []model.ChatMessage
	createErr error
	lastOpts  repository.ListOptions
}

var _ repository.ChatRepository = (*fakeChatRepo)(nil)

func (f *fakeChatRepo) CreateChatMessage(_ context.Context, msg *model.ChatMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	msg.ID = xid.New().String()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeChatRepo) ListChatMessages(_ context.Context, userID string, opts repository.ListOptions) ([]model.ChatMessage, error) {
	f.lastOpts = opts
	result := make([]model.ChatMessage, 0, opts.Limit)
	for i := len(f.messages) - 1; i >= 0 && len(result) < opts.Limit; i-- {
		m := f.messages[i]
		if userID != "" && (m.UserID == nil || *m.UserID != userID) {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

// fakeAssistant answers with reply, or fails with err when set.
type fakeAssistant struct {
	reply       string
	err         error
	calls       int
	lastMessage string
	lastHistory []assistant.Message
}

var _ assistant.Assistant = (*fakeAssistant)(nil)

func (f *fakeAssistant) Ask(_ context.Context, message string, history []assistant.Message) (string, error) {
	f.calls++
	f.lastMessage = message
	f.lastHistory = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
