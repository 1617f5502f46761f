package datatable

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrNothingPending is returned by Confirm when no row was selected
var ErrNothingPending = errors.New("no delete is pending")

// DeletedMessage is the success notification for a delete
const DeletedMessage = "Data deleted successfully"

// Deleter removes records of one collection. *Resource satisfies it.
type Deleter interface {
	Endpoint() string
	Delete(ctx context.Context, id int64) error
}

// DeleteConfig holds the dependencies of a DeleteConfirmation
type DeleteConfig struct {
	Deleter    Deleter
	Collection Refresher
	Notifier   Notifier
	Logger     *slog.Logger
}

// DeleteConfirmation holds a row delete until the operator confirms it
type DeleteConfirmation struct {
	deleter    Deleter
	collection Refresher
	notifier   Notifier
	logger     *slog.Logger

	mu       sync.Mutex
	pending  int64
	hasID    bool
	inFlight bool
}

// NewDeleteConfirmation creates a confirmation with nothing pending
func NewDeleteConfirmation(cfg DeleteConfig) *DeleteConfirmation {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteConfirmation{
		deleter:    cfg.Deleter,
		collection: cfg.Collection,
		notifier:   notifierOrDiscard(cfg.Notifier),
		logger:     logger,
	}
}

// Request stores id and opens the prompt
func (c *DeleteConfirmation) Request(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = id
	c.hasID = true
}

// Pending returns the id awaiting confirmation
func (c *DeleteConfirmation) Pending() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.hasID
}

// Visible reports whether the prompt is shown
func (c *DeleteConfirmation) Visible() bool {
	_, ok := c.Pending()
	return ok
}

// Cancel discards the pending id without issuing a request
func (c *DeleteConfirmation) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = 0
	c.hasID = false
}

// Confirm deletes the pending record. On failure the prompt stays open
// and the row is kept.
func (c *DeleteConfirmation) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if !c.hasID {
		c.mu.Unlock()
		return ErrNothingPending
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	id := c.pending
	c.inFlight = true
	c.mu.Unlock()

	err := c.deleter.Delete(ctx, id)

	c.mu.Lock()
	c.inFlight = false
	if err == nil && c.hasID && c.pending == id {
		c.pending = 0
		c.hasID = false
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("delete failed",
			slog.String("endpoint", c.deleter.Endpoint()),
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		c.notifier.Notify(Notification{Level: LevelError, Message: errorMessage(err)})
		return err
	}

	c.notifier.Notify(Notification{Level: LevelSuccess, Message: DeletedMessage})
	if c.collection != nil {
		if err := c.collection.Refresh(ctx); err != nil {
			c.logger.Warn("refresh after delete failed", slog.String("error", err.Error()))
		}
	}
	return nil
}
