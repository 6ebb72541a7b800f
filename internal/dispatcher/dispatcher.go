// Package dispatcher runs the polling loop that delivers due meal reminders.
//
// Delivery is at-least-once-attempt, at-most-once-per-acknowledged-send: a
// reminder is only marked sent after the gateway accepts it, so a crash
// between the gateway call and the status write leaves the record pending and
// it will be attempted again on a later tick. The conditional MarkResult
// (pending-only) keeps the bookkeeping single-shot even then.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/phamduchuy/savora/pkg/push"
)

// store is the slice of the reminder repository the dispatcher needs
type store interface {
	ClaimDue(asOf time.Time, lease time.Duration, limit int) ([]model.Reminder, error)
	MarkResult(id uuid.UUID, status model.ReminderStatus) error
	Reschedule(id uuid.UUID, attempts int, nextAttemptAt time.Time) error
}

// statusCache mirrors terminal transitions into the owner-scoped TTL cache
type statusCache interface {
	Set(ctx context.Context, userID, id uuid.UUID, status model.ReminderStatus) error
}

// publisher pushes status-change events to connected clients
type publisher interface {
	PublishReminderStatus(ctx context.Context, event model.ReminderStatusEvent)
}

// Config tunes the polling loop and the retry policy
type Config struct {
	Interval    time.Duration // wall-clock poll interval
	BatchLimit  int           // max reminders claimed per tick
	Concurrency int           // max in-flight gateway calls
	MaxAttempts int           // delivery attempts before terminal failure
	RetryBase   time.Duration // first retry delay, doubled per attempt
	ClaimLease  time.Duration // how long a claim excludes other instances
}

// Dispatcher periodically claims due reminders and attempts delivery
type Dispatcher struct {
	store   store
	gateway push.Gateway
	cache   statusCache
	pub     publisher
	cfg     Config
	now     func() time.Time
}

func New(store store, gateway push.Gateway, cache statusCache, pub publisher, cfg Config) *Dispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Minute
	}
	if cfg.ClaimLease <= 0 {
		cfg.ClaimLease = 5 * time.Minute
	}
	return &Dispatcher{
		store:   store,
		gateway: gateway,
		cache:   cache,
		pub:     pub,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run executes ticks on the configured interval until the context is
// cancelled. The in-flight tick finishes before Run returns.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Printf("🔔 Reminder dispatcher started (interval=%s, concurrency=%d, max attempts=%d)",
		d.cfg.Interval, d.cfg.Concurrency, d.cfg.MaxAttempts)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("🔔 Reminder dispatcher stopped")
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick claims one batch of due reminders and dispatches them with a bounded
// worker pool. Each reminder's outcome is independent: an individual failure
// never aborts the batch.
func (d *Dispatcher) Tick(ctx context.Context) {
	asOf := d.now()

	batch, err := d.store.ClaimDue(asOf, d.cfg.ClaimLease, d.cfg.BatchLimit)
	if err != nil {
		log.Printf("❌ Failed to claim due reminders: %v", err)
		return
	}
	if len(batch) == 0 {
		return
	}

	log.Printf("🔔 Dispatching %d due reminder(s)", len(batch))

	sem := make(chan struct{}, d.cfg.Concurrency)
	var wg sync.WaitGroup
	for _, reminder := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(r model.Reminder) {
			defer wg.Done()
			defer func() { <-sem }()
			d.dispatch(ctx, r)
		}(reminder)
	}
	wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, r model.Reminder) {
	if !r.HasPushToken() {
		log.Printf("⚠️  Reminder %s has no push token, marking failed", r.ID)
		d.finish(ctx, r, model.ReminderStatusFailed)
		return
	}

	msg := push.Message{
		To:    *r.PushToken,
		Sound: "default",
		Title: r.RecipeName,
		Body:  fmt.Sprintf("It's time to cook %s!", r.RecipeName),
		Data: map[string]string{
			"reminderId":  r.ID.String(),
			"recipeImage": r.RecipeImage,
			"mealType":    string(r.MealType),
		},
	}

	receipt, err := d.gateway.Send(ctx, msg)
	if err != nil {
		d.retryOrFail(ctx, r, err)
		return
	}

	if !receipt.Accepted {
		log.Printf("⚠️  Push rejected for reminder %s (%s)", r.ID, receipt.ErrorCode)
		d.finish(ctx, r, model.ReminderStatusFailed)
		return
	}

	d.finish(ctx, r, model.ReminderStatusSent)
}

// retryOrFail handles a transport failure: reschedule with exponential
// backoff until the attempt budget is exhausted, then fail terminally
func (d *Dispatcher) retryOrFail(ctx context.Context, r model.Reminder, cause error) {
	attempts := r.Attempts + 1
	if attempts >= d.cfg.MaxAttempts {
		log.Printf("❌ Reminder %s failed after %d attempt(s): %v", r.ID, attempts, cause)
		d.finish(ctx, r, model.ReminderStatusFailed)
		return
	}

	backoff := d.cfg.RetryBase << (attempts - 1)
	nextAttempt := d.now().Add(backoff)
	log.Printf("⚠️  Transport error for reminder %s (attempt %d/%d), retrying in %s: %v",
		r.ID, attempts, d.cfg.MaxAttempts, backoff, cause)

	err := d.store.Reschedule(r.ID, attempts, nextAttempt)
	if errors.Is(err, model.ErrNotFound) {
		// Deleted while we held the claim; nothing left to do.
		return
	}
	if err != nil {
		log.Printf("❌ Failed to reschedule reminder %s: %v", r.ID, err)
	}
}

// finish records a terminal status. A record deleted mid-flight or already
// resolved by another instance is a benign race, not an error.
func (d *Dispatcher) finish(ctx context.Context, r model.Reminder, status model.ReminderStatus) {
	err := d.store.MarkResult(r.ID, status)
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrConflict) {
		return
	}
	if err != nil {
		log.Printf("❌ Failed to mark reminder %s as %s: %v", r.ID, status, err)
		return
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, r.UserID, r.ID, status); err != nil {
			log.Printf("⚠️  Failed to cache status for reminder %s: %v", r.ID, err)
		}
	}

	if d.pub != nil {
		d.pub.PublishReminderStatus(ctx, model.ReminderStatusEvent{
			ReminderID: r.ID,
			UserID:     r.UserID,
			RecipeName: r.RecipeName,
			Status:     status,
			At:         d.now(),
		})
	}
}
