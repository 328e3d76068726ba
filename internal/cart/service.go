package cart

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/google/uuid"
)

const lockStripes = 64

// MaxSessionLength bounds guest session tokens accepted from clients.
const MaxSessionLength = 128

// CatalogReader resolves the item snapshot stored on a cart line.
type CatalogReader interface {
	CartItem(ctx context.Context, itemID uuid.UUID) (CatalogItem, error)
}

type mutationRecorder interface {
	IncCartMutation(op string, err error)
}

// Service applies cart operations for a session key.
type Service interface {
	Get(ctx context.Context, key string) (State, error)
	AddItem(ctx context.Context, key string, itemID uuid.UUID) (State, error)
	UpdateQuantity(ctx context.Context, key string, itemID uuid.UUID, quantity int) (State, error)
	RemoveItem(ctx context.Context, key string, itemID uuid.UUID) (State, error)
	Clear(ctx context.Context, key string) (State, error)
	// Consume removes the ordered quantities from the cart after checkout.
	Consume(ctx context.Context, key string, ordered []Line) (State, error)
}

type service struct {
	store   Store
	catalog CatalogReader
	metrics mutationRecorder
	logg    *logger.Logger
	locks   [lockStripes]sync.Mutex
	shared  *SharedLock
}

type Option func(*service)

// WithSharedLock makes every mutation also hold the cart's lease in lock, for
// stores shared between replicas.
func WithSharedLock(lock *SharedLock) Option {
	return func(s *service) { s.shared = lock }
}

// NewService wires the cart service. metrics and logg may be nil.
func NewService(store Store, catalog CatalogReader, metrics mutationRecorder, logg *logger.Logger, opts ...Option) (Service, error) {
	if store == nil {
		return nil, errors.New("cart store required")
	}
	if catalog == nil {
		return nil, errors.New("catalog reader required")
	}
	s := &service{store: store, catalog: catalog, metrics: metrics, logg: logg}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SessionKey picks the cart key for a request: the authenticated user wins
// over the guest session header.
func SessionKey(userID *uuid.UUID, guestSession string) (string, error) {
	if userID != nil && *userID != uuid.Nil {
		return "user:" + userID.String(), nil
	}
	guestSession = strings.TrimSpace(guestSession)
	if guestSession == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	if len(guestSession) > MaxSessionLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session too long")
	}
	return "guest:" + guestSession, nil
}

func (s *service) Get(ctx context.Context, key string) (State, error) {
	engine, err := Open(ctx, s.store, key)
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return engine.State(), nil
}

func (s *service) AddItem(ctx context.Context, key string, itemID uuid.UUID) (State, error) {
	item, err := s.catalog.CartItem(ctx, itemID)
	if err != nil {
		s.record("add", err)
		return State{}, err
	}
	if !item.IsAvailable {
		err := pkgerrors.New(pkgerrors.CodeValidation, "item is not available")
		s.record("add", err)
		return State{}, err
	}
	return s.mutate(ctx, "add", key, func(e *Engine) error {
		return e.AddItem(ctx, item)
	})
}

func (s *service) UpdateQuantity(ctx context.Context, key string, itemID uuid.UUID, quantity int) (State, error) {
	return s.mutate(ctx, "update", key, func(e *Engine) error {
		return e.UpdateQuantity(ctx, itemID.String(), quantity)
	})
}

func (s *service) RemoveItem(ctx context.Context, key string, itemID uuid.UUID) (State, error) {
	return s.mutate(ctx, "remove", key, func(e *Engine) error {
		return e.RemoveItem(ctx, itemID.String())
	})
}

func (s *service) Clear(ctx context.Context, key string) (State, error) {
	return s.mutate(ctx, "clear", key, func(e *Engine) error {
		return e.Clear(ctx)
	})
}

func (s *service) Consume(ctx context.Context, key string, ordered []Line) (State, error) {
	return s.mutate(ctx, "consume", key, func(e *Engine) error {
		return e.Consume(ctx, ordered)
	})
}

// mutate serializes load, change and save for one key: in process through
// the striped mutex, across replicas through the shared lease when set.
func (s *service) mutate(ctx context.Context, op, key string, apply func(*Engine) error) (State, error) {
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	if s.shared != nil {
		release, err := s.shared.Acquire(ctx, key)
		if err != nil {
			s.record(op, err)
			if errors.Is(err, ErrCartBusy) {
				return State{}, pkgerrors.New(pkgerrors.CodeConflict, "cart is being updated, retry")
			}
			if s.logg != nil {
				s.logg.Error(s.logg.WithCartSession(ctx, key), "cart lock failed", err)
			}
			return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable")
		}
		defer func() {
			if err := release(ctx); err != nil && s.logg != nil {
				s.logg.Error(s.logg.WithCartSession(ctx, key), "cart unlock failed", err)
			}
		}()
	}

	engine, err := Open(ctx, s.store, key)
	if err == nil {
		err = apply(engine)
	}
	s.record(op, err)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithCartSession(ctx, key), "cart "+op+" failed", err)
		}
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable")
	}
	return engine.State(), nil
}

func (s *service) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *service) record(op string, err error) {
	if s.metrics != nil {
		s.metrics.IncCartMutation(op, err)
	}
}
