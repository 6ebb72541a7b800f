package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReminderRepo struct {
	mock.Mock
}

func (m *mockReminderRepo) Create(reminder *model.Reminder) error {
	args := m.Called(reminder)
	return args.Error(0)
}

func (m *mockReminderRepo) FindByID(userID, id uuid.UUID) (*model.Reminder, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *mockReminderRepo) List(userID uuid.UUID, mealType model.MealType, status model.ReminderStatus) ([]model.Reminder, error) {
	args := m.Called(userID, mealType, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reminder), args.Error(1)
}

func (m *mockReminderRepo) Delete(userID, id uuid.UUID) error {
	args := m.Called(userID, id)
	return args.Error(0)
}

type mockStatusCache struct {
	mock.Mock
}

func (m *mockStatusCache) Get(ctx context.Context, userID, id uuid.UUID) (model.ReminderStatus, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(model.ReminderStatus), args.Error(1)
}

func (m *mockStatusCache) Set(ctx context.Context, userID, id uuid.UUID, status model.ReminderStatus) error {
	args := m.Called(ctx, userID, id, status)
	return args.Error(0)
}

func (m *mockStatusCache) Invalidate(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// mapStatusCache is a real owner-scoped cache for tests that share one cache
// between users
type mapStatusCache struct {
	statuses map[string]model.ReminderStatus
}

func newMapStatusCache() *mapStatusCache {
	return &mapStatusCache{statuses: make(map[string]model.ReminderStatus)}
}

func (c *mapStatusCache) key(userID, id uuid.UUID) string {
	return userID.String() + ":" + id.String()
}

func (c *mapStatusCache) Get(ctx context.Context, userID, id uuid.UUID) (model.ReminderStatus, error) {
	status, ok := c.statuses[c.key(userID, id)]
	if !ok {
		return "", model.ErrNotFound
	}
	return status, nil
}

func (c *mapStatusCache) Set(ctx context.Context, userID, id uuid.UUID, status model.ReminderStatus) error {
	c.statuses[c.key(userID, id)] = status
	return nil
}

func (c *mapStatusCache) Invalidate(ctx context.Context, userID, id uuid.UUID) error {
	delete(c.statuses, c.key(userID, id))
	return nil
}

func newReminderServiceAt(t *testing.T, now time.Time) (*ReminderService, *mockReminderRepo, *mockStatusCache) {
	t.Helper()
	repo := new(mockReminderRepo)
	cache := new(mockStatusCache)
	svc := NewReminderService(repo, cache)
	svc.now = func() time.Time { return now }
	return svc, repo, cache
}

func TestReminderCreate_PersistsValidatedFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, cache := newReminderServiceAt(t, now)
	userID := uuid.New()
	token := "ExponentPushToken[abc]"

	repo.On("Create", mock.AnythingOfType("*model.Reminder")).Return(nil)
	cache.On("Set", mock.Anything, userID, mock.Anything, model.ReminderStatusPending).Return(nil)

	reminder, err := svc.Create(context.Background(), userID, model.CreateAlarmRequest{
		RecipeName:   "Shakshuka",
		RecipeImage:  "https://img.example/shakshuka.jpg",
		MealType:     "Breakfast",
		ScheduleTime: "2025-06-01T18:30:00Z",
		PushToken:    &token,
	})

	require.NoError(t, err)
	assert.Equal(t, userID, reminder.UserID)
	assert.Equal(t, "Shakshuka", reminder.RecipeName)
	assert.Equal(t, model.MealTypeBreakfast, reminder.MealType)
	assert.Equal(t, model.ReminderStatusPending, reminder.Status)
	assert.Equal(t, reminder.ScheduledTime, reminder.NextAttemptAt,
		"first attempt is the scheduled time itself")
	assert.True(t, reminder.ScheduledTime.Equal(time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)))
	repo.AssertExpectations(t)
}

func TestReminderCreate_RejectsPastScheduleTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newReminderServiceAt(t, now)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateAlarmRequest{
		RecipeName:   "Shakshuka",
		MealType:     "Breakfast",
		ScheduleTime: "2025-06-01T11:59:00Z",
	})

	assert.ErrorIs(t, err, model.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestReminderCreate_RejectsExactlyNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newReminderServiceAt(t, now)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateAlarmRequest{
		RecipeName:   "Shakshuka",
		MealType:     "Breakfast",
		ScheduleTime: "2025-06-01T12:00:00Z",
	})

	assert.ErrorIs(t, err, model.ErrValidation, "the boundary is strictly in the future")
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestReminderCreate_RejectsMalformedTimestamp(t *testing.T) {
	svc, repo, _ := newReminderServiceAt(t, time.Now())

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateAlarmRequest{
		RecipeName:   "Shakshuka",
		MealType:     "Breakfast",
		ScheduleTime: "tomorrow at noon",
	})

	assert.ErrorIs(t, err, model.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestReminderCreate_RejectsUnknownMealType(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newReminderServiceAt(t, now)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateAlarmRequest{
		RecipeName:   "Shakshuka",
		MealType:     "Brunch",
		ScheduleTime: "2025-06-01T18:30:00Z",
	})

	assert.ErrorIs(t, err, model.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestReminderCreate_DuplicatePendingSlotIsConflict(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newReminderServiceAt(t, now)

	repo.On("Create", mock.AnythingOfType("*model.Reminder")).Return(model.ErrConflict)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreateAlarmRequest{
		RecipeName:   "Shakshuka",
		MealType:     "Breakfast",
		ScheduleTime: "2025-06-01T18:30:00Z",
	})

	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestReminderList_RejectsUnknownFilters(t *testing.T) {
	svc, repo, _ := newReminderServiceAt(t, time.Now())

	_, err := svc.List(uuid.New(), model.ReminderListQuery{MealType: "Brunch"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.List(uuid.New(), model.ReminderListQuery{Status: "delivered"})
	assert.ErrorIs(t, err, model.ErrValidation)

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestReminderList_PassesFiltersThrough(t *testing.T) {
	svc, repo, _ := newReminderServiceAt(t, time.Now())
	userID := uuid.New()
	want := []model.Reminder{{ID: uuid.New(), RecipeName: "Pho"}}

	repo.On("List", userID, model.MealTypeDinner, model.ReminderStatusPending).Return(want, nil)

	got, err := svc.List(userID, model.ReminderListQuery{MealType: "Dinner", Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestReminderGetStatus_ServedFromCache(t *testing.T) {
	svc, repo, cache := newReminderServiceAt(t, time.Now())
	userID, id := uuid.New(), uuid.New()

	cache.On("Get", mock.Anything, userID, id).Return(model.ReminderStatusSent, nil)

	status, err := svc.GetStatus(context.Background(), userID, id)
	require.NoError(t, err)
	assert.Equal(t, model.ReminderStatusSent, status)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestReminderGetStatus_CacheMissFallsBackToStore(t *testing.T) {
	svc, repo, cache := newReminderServiceAt(t, time.Now())
	userID, id := uuid.New(), uuid.New()

	cache.On("Get", mock.Anything, userID, id).Return(model.ReminderStatus(""), model.ErrNotFound)
	repo.On("FindByID", userID, id).Return(&model.Reminder{ID: id, Status: model.ReminderStatusFailed}, nil)
	cache.On("Set", mock.Anything, userID, id, model.ReminderStatusFailed).Return(nil)

	status, err := svc.GetStatus(context.Background(), userID, id)
	require.NoError(t, err)
	assert.Equal(t, model.ReminderStatusFailed, status)
	cache.AssertExpectations(t)
}

func TestReminderGetStatus_UnknownIDIsNotFound(t *testing.T) {
	svc, repo, cache := newReminderServiceAt(t, time.Now())
	userID, id := uuid.New(), uuid.New()

	cache.On("Get", mock.Anything, userID, id).Return(model.ReminderStatus(""), model.ErrNotFound)
	repo.On("FindByID", userID, id).Return(nil, model.ErrNotFound)

	_, err := svc.GetStatus(context.Background(), userID, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReminderGetStatus_CacheIsScopedToOwner(t *testing.T) {
	// Owner and stranger share one cache. The owner's cached entry must not
	// satisfy the stranger's lookup; the stranger falls through to the store,
	// where the ownership check says not found.
	owner, stranger, id := uuid.New(), uuid.New(), uuid.New()
	shared := newMapStatusCache()
	require.NoError(t, shared.Set(context.Background(), owner, id, model.ReminderStatusSent))

	repo := new(mockReminderRepo)
	repo.On("FindByID", stranger, id).Return(nil, model.ErrNotFound)
	svc := NewReminderService(repo, shared)

	_, err := svc.GetStatus(context.Background(), stranger, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	repo.AssertExpectations(t)

	status, err := svc.GetStatus(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, model.ReminderStatusSent, status)
}

func TestReminderDelete_Succeeds(t *testing.T) {
	svc, repo, cache := newReminderServiceAt(t, time.Now())
	userID, id := uuid.New(), uuid.New()

	repo.On("Delete", userID, id).Return(nil)
	cache.On("Invalidate", mock.Anything, userID, id).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), userID, id))
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestReminderDelete_MissingIDIsIdempotent(t *testing.T) {
	svc, repo, cache := newReminderServiceAt(t, time.Now())
	userID, id := uuid.New(), uuid.New()

	repo.On("Delete", userID, id).Return(model.ErrNotFound)
	cache.On("Invalidate", mock.Anything, userID, id).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), userID, id),
		"deleting an already-resolved reminder is not an error")
}
