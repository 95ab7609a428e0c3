// internal/domain/cart/store.go
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
)

// KeyValueStore is the durable string-keyed slot the cart snapshot lives in
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the slot. Clear writes an empty list instead of
	// calling it, so a cleared cart still reads back as found.
	Remove(ctx context.Context, key string) error
}

// Recorder receives operation outcomes, typically for metrics
type Recorder interface {
	CartOperation(op, result string)
	PersistFailure(op string)
}

// Operation outcome labels passed to Recorder
const (
	ResultOK            = "ok"
	ResultInvalid       = "invalid"
	ResultNotReady      = "not_ready"
	ResultPersistFailed = "persist_failed"
)

type nopRecorder struct{}

func (nopRecorder) CartOperation(string, string) {}
func (nopRecorder) PersistFailure(string)        {}

// Store is the single owner of the cart. Mutations are rejected with
// ErrNotReady until Hydrate has run. Every mutation rewrites the whole
// snapshot to the key-value store while holding the write lock, so readers
// only ever observe complete snapshots.
type Store struct {
	mu       sync.RWMutex
	kv       KeyValueStore
	key      string
	attempts int
	backoff  time.Duration
	logger   *logrus.Logger
	recorder Recorder

	items Snapshot
	ready bool
}

// NewStore creates an uninitialized cart store backed by kv
func NewStore(kv KeyValueStore, cfg *config.Config, logger *logrus.Logger) *Store {
	attempts := cfg.Cart.PersistAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &Store{
		kv:       kv,
		key:      cfg.Cart.StorageKey,
		attempts: attempts,
		backoff:  cfg.Cart.PersistBackoff,
		logger:   logger,
		recorder: nopRecorder{},
		items:    Snapshot{},
	}
}

// WithRecorder attaches an operation recorder
func (s *Store) WithRecorder(r Recorder) *Store {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Key returns the storage key the snapshot is persisted under
func (s *Store) Key() string {
	return s.key
}

// Ready reports whether Hydrate has completed
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Snapshot returns a copy of the latest in-memory cart. This may be ahead of
// the durable copy if a write failed.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Clone()
}

// Hydrate loads the persisted snapshot and moves the store to ready. A
// missing, unreadable or corrupt payload yields an empty cart; read and
// parse failures are returned as a *PersistenceError alongside it. Calling
// Hydrate on a ready store returns the current snapshot without touching the
// key-value store.
func (s *Store) Hydrate(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return s.items.Clone(), nil
	}

	s.items = Snapshot{}
	s.ready = true

	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return s.items.Clone(), s.readFailure(err)
	}
	if !found {
		s.recorder.CartOperation("hydrate", ResultOK)
		return s.items.Clone(), nil
	}

	snapshot, err := decodeSnapshot(raw)
	if err != nil {
		return s.items.Clone(), s.readFailure(err)
	}

	s.items = snapshot
	s.recorder.CartOperation("hydrate", ResultOK)
	s.logger.WithFields(logrus.Fields{
		"key":   s.key,
		"items": len(snapshot),
	}).Info("Cart hydrated from storage")

	return s.items.Clone(), nil
}

// AddOrMergeItem adds quantityDelta units of (productID, variantKey). An
// existing entry only has its quantity raised; its captured fields are kept.
// A new entry is appended with the given fields.
func (s *Store) AddOrMergeItem(ctx context.Context, productID int, variantKey string, quantityDelta int, fields ProductFields) (Snapshot, error) {
	key := NewItemKey(productID, variantKey)

	return s.mutate(ctx, "add", func(items Snapshot) (Snapshot, error) {
		if quantityDelta < 1 {
			return nil, invalidOperation("quantity must be at least 1, got %d", quantityDelta)
		}

		idx := items.Find(key)
		current := 0
		if idx >= 0 {
			current = items[idx].Quantity
		}
		if quantityDelta > MaxQuantity-current {
			return nil, invalidOperation("quantity cannot exceed %d, have %d, adding %d", MaxQuantity, current, quantityDelta)
		}

		if idx >= 0 {
			items[idx].Quantity += quantityDelta
			return items, nil
		}

		return append(items, LineItem{
			ProductID:  key.ProductID,
			VariantKey: key.VariantKey,
			Title:      fields.Title,
			ImageRef:   fields.ImageRef,
			UnitPrice:  fields.UnitPrice,
			Quantity:   quantityDelta,
		}), nil
	})
}

// SetQuantity steps the quantity of an entry by +1 or -1. Decrements stop at
// 1; use RemoveItem to drop an entry. Stepping past MaxQuantity is rejected.
// A missing entry is left alone but the snapshot is still written.
func (s *Store) SetQuantity(ctx context.Context, productID int, variantKey string, delta int) (Snapshot, error) {
	key := NewItemKey(productID, variantKey)

	return s.mutate(ctx, "set_quantity", func(items Snapshot) (Snapshot, error) {
		if delta != 1 && delta != -1 {
			return nil, invalidOperation("quantity delta must be +1 or -1, got %d", delta)
		}

		idx := items.Find(key)
		if idx < 0 {
			return items, nil
		}

		next := items[idx].Quantity + delta
		if next < 1 {
			next = 1
		}
		if next > MaxQuantity {
			return nil, invalidOperation("quantity cannot exceed %d", MaxQuantity)
		}
		items[idx].Quantity = next

		return items, nil
	})
}

// RemoveItem deletes an entry, keeping the order of the others. Removing an
// absent entry is a no-op that still persists.
func (s *Store) RemoveItem(ctx context.Context, productID int, variantKey string) (Snapshot, error) {
	key := NewItemKey(productID, variantKey)

	return s.mutate(ctx, "remove", func(items Snapshot) (Snapshot, error) {
		idx := items.Find(key)
		if idx < 0 {
			return items, nil
		}
		return append(items[:idx], items[idx+1:]...), nil
	})
}

// Clear empties the cart and persists the empty snapshot
func (s *Store) Clear(ctx context.Context) (Snapshot, error) {
	return s.mutate(ctx, "clear", func(Snapshot) (Snapshot, error) {
		return Snapshot{}, nil
	})
}

// mutate applies fn to a private copy of the cart, publishes the result and
// writes it through. A failed write leaves the new state in place.
func (s *Store) mutate(ctx context.Context, op string, fn func(Snapshot) (Snapshot, error)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		s.recorder.CartOperation(op, ResultNotReady)
		return s.items.Clone(), ErrNotReady
	}

	next, err := fn(s.items.Clone())
	if err != nil {
		s.recorder.CartOperation(op, ResultInvalid)
		s.logger.WithField("op", op).WithError(err).Debug("Rejected cart operation")
		return s.items.Clone(), err
	}

	s.items = next

	if err := s.persist(ctx, next); err != nil {
		s.recorder.CartOperation(op, ResultPersistFailed)
		s.recorder.PersistFailure(string(OpWrite))
		s.logger.WithFields(logrus.Fields{
			"op":  op,
			"key": s.key,
		}).WithError(err).Warn("Cart changed in memory but could not be persisted")
		return s.items.Clone(), err
	}

	s.recorder.CartOperation(op, ResultOK)
	return s.items.Clone(), nil
}

func (s *Store) persist(ctx context.Context, snapshot Snapshot) error {
	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		return &PersistenceError{Op: OpWrite, Key: s.key, Err: err}
	}

	for attempt := 1; ; attempt++ {
		err = s.kv.Set(ctx, s.key, payload)
		if err == nil {
			return nil
		}
		if attempt >= s.attempts {
			break
		}

		s.logger.WithFields(logrus.Fields{
			"key":     s.key,
			"attempt": attempt,
		}).WithError(err).Debug("Retrying cart write")

		select {
		case <-ctx.Done():
			return &PersistenceError{Op: OpWrite, Key: s.key, Err: ctx.Err()}
		case <-time.After(s.backoff):
		}
	}

	return &PersistenceError{Op: OpWrite, Key: s.key, Err: err}
}

func (s *Store) readFailure(err error) error {
	s.recorder.CartOperation("hydrate", ResultPersistFailed)
	s.recorder.PersistFailure(string(OpRead))
	s.logger.WithField("key", s.key).WithError(err).Warn("Could not load persisted cart, starting empty")
	return &PersistenceError{Op: OpRead, Key: s.key, Err: err}
}
