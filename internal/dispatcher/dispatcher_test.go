package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/phamduchuy/savora/pkg/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

// fakeStore is an in-memory reminder store with the same race semantics as
// the SQL repository: MarkResult only transitions pending records, deleted
// records surface ErrNotFound.
type fakeStore struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*model.Reminder
}

func newFakeStore(reminders ...*model.Reminder) *fakeStore {
	s := &fakeStore{reminders: make(map[uuid.UUID]*model.Reminder)}
	for _, r := range reminders {
		s.reminders[r.ID] = r
	}
	return s
}

func (s *fakeStore) ClaimDue(asOf time.Time, lease time.Duration, limit int) ([]model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var claimed []model.Reminder
	for _, r := range s.reminders {
		if len(claimed) >= limit {
			break
		}
		leaseFree := r.ClaimedAt == nil || r.ClaimedAt.Before(asOf.Add(-lease))
		if r.IsDue(asOf) && leaseFree {
			at := asOf
			r.ClaimedAt = &at
			claimed = append(claimed, *r)
		}
	}
	return claimed, nil
}

func (s *fakeStore) MarkResult(id uuid.UUID, status model.ReminderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return model.ErrNotFound
	}
	if r.Status != model.ReminderStatusPending {
		return model.ErrConflict
	}
	r.Status = status
	r.ClaimedAt = nil
	return nil
}

func (s *fakeStore) Reschedule(id uuid.UUID, attempts int, nextAttemptAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.Status != model.ReminderStatusPending {
		return model.ErrNotFound
	}
	r.Attempts = attempts
	r.NextAttemptAt = nextAttemptAt
	r.ClaimedAt = nil
	return nil
}

func (s *fakeStore) delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reminders, id)
}

func (s *fakeStore) get(id uuid.UUID) model.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.reminders[id]
}

// fakeGateway scripts a response per token
type fakeGateway struct {
	mu       sync.Mutex
	receipts map[string]push.Receipt
	errs     map[string]error
	calls    []push.Message

	inFlight    int
	maxInFlight int
	delay       time.Duration
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		receipts: make(map[string]push.Receipt),
		errs:     make(map[string]error),
	}
}

func (g *fakeGateway) Send(ctx context.Context, msg push.Message) (push.Receipt, error) {
	g.mu.Lock()
	g.calls = append(g.calls, msg)
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	g.mu.Unlock()

	if g.delay > 0 {
		time.Sleep(g.delay)
	}

	g.mu.Lock()
	g.inFlight--
	receipt, err := g.receipts[msg.To], g.errs[msg.To]
	g.mu.Unlock()
	return receipt, err
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.ReminderStatusEvent
}

func (p *fakePublisher) PublishReminderStatus(ctx context.Context, event model.ReminderStatusEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// --- helpers ---

func strPtr(s string) *string { return &s }

func dueReminder(token *string) *model.Reminder {
	past := time.Now().Add(-time.Minute)
	return &model.Reminder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		RecipeName:    "Pasta",
		MealType:      model.MealTypeDinner,
		ScheduledTime: past,
		NextAttemptAt: past,
		Status:        model.ReminderStatusPending,
		PushToken:     token,
	}
}

func newTestDispatcher(s *fakeStore, g push.Gateway, pub publisher, cfg Config) *Dispatcher {
	return New(s, g, nil, pub, cfg)
}

// --- tests ---

func TestTick_AcceptedBecomesSent(t *testing.T) {
	r := dueReminder(strPtr("tok1"))
	store := newFakeStore(r)
	gateway := newFakeGateway()
	gateway.receipts["tok1"] = push.Receipt{Accepted: true, ProviderMessageID: "msg-1"}
	pub := &fakePublisher{}

	d := newTestDispatcher(store, gateway, pub, Config{})
	d.Tick(context.Background())

	assert.Equal(t, model.ReminderStatusSent, store.get(r.ID).Status)
	require.Equal(t, 1, gateway.callCount())
	assert.Equal(t, "tok1", gateway.calls[0].To)
	assert.Equal(t, "Pasta", gateway.calls[0].Title)
	assert.Equal(t, "It's time to cook Pasta!", gateway.calls[0].Body)

	require.Len(t, pub.events, 1)
	assert.Equal(t, model.ReminderStatusSent, pub.events[0].Status)
	assert.Equal(t, r.ID, pub.events[0].ReminderID)
}

func TestTick_MissingTokenFailsWithoutGatewayCall(t *testing.T) {
	r := dueReminder(nil)
	store := newFakeStore(r)
	gateway := newFakeGateway()

	d := newTestDispatcher(store, gateway, nil, Config{})
	d.Tick(context.Background())

	assert.Equal(t, model.ReminderStatusFailed, store.get(r.ID).Status)
	assert.Zero(t, gateway.callCount(), "gateway must not be called without a token")
}

func TestTick_RejectionIsTerminalFailure(t *testing.T) {
	r := dueReminder(strPtr("dead-token"))
	store := newFakeStore(r)
	gateway := newFakeGateway()
	gateway.receipts["dead-token"] = push.Receipt{Accepted: false, ErrorCode: "DeviceNotRegistered"}

	d := newTestDispatcher(store, gateway, nil, Config{})
	d.Tick(context.Background())

	got := store.get(r.ID)
	assert.Equal(t, model.ReminderStatusFailed, got.Status)
	assert.Zero(t, got.Attempts, "rejections are not retried")
}

func TestTick_TransportErrorReschedulesWithBackoff(t *testing.T) {
	r := dueReminder(strPtr("tok1"))
	store := newFakeStore(r)
	gateway := newFakeGateway()
	gateway.errs["tok1"] = errors.New("connection refused")

	d := newTestDispatcher(store, gateway, nil, Config{MaxAttempts: 3, RetryBase: time.Minute})
	before := time.Now()
	d.Tick(context.Background())

	got := store.get(r.ID)
	assert.Equal(t, model.ReminderStatusPending, got.Status, "first transport error is retryable")
	assert.Equal(t, 1, got.Attempts)
	assert.True(t, got.NextAttemptAt.After(before.Add(50*time.Second)),
		"retry must be pushed out by roughly the base delay")
	assert.Nil(t, got.ClaimedAt, "lease released for the retry")
}

func TestTick_TransportErrorExhaustsRetryBudget(t *testing.T) {
	r := dueReminder(strPtr("tok1"))
	r.Attempts = 2 // two failed attempts already recorded
	store := newFakeStore(r)
	gateway := newFakeGateway()
	gateway.errs["tok1"] = errors.New("connection refused")

	d := newTestDispatcher(store, gateway, nil, Config{MaxAttempts: 3})
	d.Tick(context.Background())

	assert.Equal(t, model.ReminderStatusFailed, store.get(r.ID).Status)
}

func TestTick_OneFailureDoesNotAffectTheBatch(t *testing.T) {
	ok := dueReminder(strPtr("tok-ok"))
	bad := dueReminder(strPtr("tok-bad"))
	bad.Attempts = 2
	store := newFakeStore(ok, bad)
	gateway := newFakeGateway()
	gateway.receipts["tok-ok"] = push.Receipt{Accepted: true}
	gateway.errs["tok-bad"] = errors.New("gateway timeout")

	d := newTestDispatcher(store, gateway, nil, Config{MaxAttempts: 3})
	d.Tick(context.Background())

	assert.Equal(t, model.ReminderStatusSent, store.get(ok.ID).Status)
	assert.Equal(t, model.ReminderStatusFailed, store.get(bad.ID).Status)
}

func TestTick_DeleteDuringDispatchIsBenign(t *testing.T) {
	r := dueReminder(strPtr("tok1"))
	store := newFakeStore(r)
	gateway := newFakeGateway()
	gateway.receipts["tok1"] = push.Receipt{Accepted: true}
	pub := &fakePublisher{}

	// Claim happens, then the client deletes before MarkResult lands.
	gateway.delay = 20 * time.Millisecond
	d := newTestDispatcher(store, gateway, pub, Config{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Tick(context.Background())
	}()
	time.Sleep(5 * time.Millisecond)
	store.delete(r.ID)
	<-done

	store.mu.Lock()
	_, exists := store.reminders[r.ID]
	store.mu.Unlock()
	assert.False(t, exists, "delete wins")
	assert.Empty(t, pub.events, "no status event for a deleted reminder")
}

func TestTick_SecondTickDoesNotRedeliverTerminal(t *testing.T) {
	r := dueReminder(strPtr("tok1"))
	store := newFakeStore(r)
	gateway := newFakeGateway()
	gateway.receipts["tok1"] = push.Receipt{Accepted: true}

	d := newTestDispatcher(store, gateway, nil, Config{})
	d.Tick(context.Background())
	d.Tick(context.Background())

	assert.Equal(t, 1, gateway.callCount(), "a sent reminder is never claimed again")
}

func TestTick_NotYetDueIsExcluded(t *testing.T) {
	r := dueReminder(strPtr("tok1"))
	future := time.Now().Add(time.Hour)
	r.ScheduledTime = future
	r.NextAttemptAt = future
	store := newFakeStore(r)
	gateway := newFakeGateway()

	d := newTestDispatcher(store, gateway, nil, Config{})
	d.Tick(context.Background())

	assert.Zero(t, gateway.callCount())
	assert.Equal(t, model.ReminderStatusPending, store.get(r.ID).Status)
}

func TestTick_ConcurrencyIsBounded(t *testing.T) {
	var reminders []*model.Reminder
	gateway := newFakeGateway()
	gateway.delay = 10 * time.Millisecond
	for i := 0; i < 8; i++ {
		r := dueReminder(strPtr("tok"))
		reminders = append(reminders, r)
	}
	gateway.receipts["tok"] = push.Receipt{Accepted: true}
	store := newFakeStore(reminders...)

	d := newTestDispatcher(store, gateway, nil, Config{Concurrency: 2})
	d.Tick(context.Background())

	assert.Equal(t, 8, gateway.callCount())
	assert.LessOrEqual(t, gateway.maxInFlight, 2, "in-flight gateway calls capped")
}

func TestTick_DataPayloadCarriesRecipeImage(t *testing.T) {
	r := dueReminder(strPtr("tok1"))
	r.RecipeImage = "https://img.example/pasta.jpg"
	store := newFakeStore(r)
	gateway := newFakeGateway()
	gateway.receipts["tok1"] = push.Receipt{Accepted: true}

	d := newTestDispatcher(store, gateway, nil, Config{})
	d.Tick(context.Background())

	require.Equal(t, 1, gateway.callCount())
	assert.Equal(t, "https://img.example/pasta.jpg", gateway.calls[0].Data["recipeImage"])
	assert.Equal(t, "default", gateway.calls[0].Sound)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, newFakeGateway(), nil, Config{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancellation")
	}
}
