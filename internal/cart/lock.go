package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delish-app/tiffin-backend/pkg/instance"
	"github.com/google/uuid"
)

const (
	lockRetryMin = 5 * time.Millisecond
	lockRetryMax = 100 * time.Millisecond
)

// ErrCartBusy is returned when another replica kept the cart locked for the
// whole wait.
var ErrCartBusy = errors.New("cart is locked by another request")

// leaseStore is satisfied by *redis.Client.
type leaseStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DeleteIfEquals(ctx context.Context, key, value string) (bool, error)
	CartLockKey(namespace, session string) string
}

// SharedLock serialises mutations of one cart across API replicas. Each
// holder writes its own token, and release only deletes a lease that still
// carries it.
type SharedLock struct {
	store     leaseStore
	namespace string
	ttl       time.Duration
	wait      time.Duration
}

func NewSharedLock(store leaseStore, namespace string, ttl, wait time.Duration) (*SharedLock, error) {
	switch {
	case store == nil:
		return nil, errors.New("lock store required")
	case namespace == "":
		return nil, errors.New("cart namespace required")
	case ttl <= 0:
		return nil, errors.New("cart lock ttl must be positive")
	case wait < 0:
		return nil, errors.New("cart lock wait must not be negative")
	}
	return &SharedLock{store: store, namespace: namespace, ttl: ttl, wait: wait}, nil
}

// Acquire polls until the lease for session is taken or the wait runs out.
// The returned func releases it.
func (l *SharedLock) Acquire(ctx context.Context, session string) (func(context.Context) error, error) {
	key := l.store.CartLockKey(l.namespace, session)
	token := instance.ID() + ":" + uuid.NewString()
	deadline := time.Now().Add(l.wait)
	delay := lockRetryMin
	for {
		ok, err := l.store.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				if _, err := l.store.DeleteIfEquals(context.WithoutCancel(ctx), key, token); err != nil {
					return fmt.Errorf("release %s: %w", key, err)
				}
				return nil
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrCartBusy
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if delay *= 2; delay > lockRetryMax {
			delay = lockRetryMax
		}
	}
}
