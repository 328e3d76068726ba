package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/delish-app/tiffin-backend/pkg/redis"
)

// Encode serializes state into its stored JSON form.
func Encode(state State) ([]byte, error) {
	if state.Lines == nil {
		state.Lines = []Line{}
	}
	return json.Marshal(state)
}

// Decode parses a stored payload. Derived fields are rebuilt from the lines
// so a stale total in storage never leaks out.
func Decode(payload []byte) (State, error) {
	var state State
	if len(payload) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(payload, &state); err != nil {
		return State{}, fmt.Errorf("decode cart state: %w", err)
	}
	state.recompute()
	return state, nil
}

// MemoryStore keeps encoded carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, key string) (State, error) {
	s.mu.RLock()
	payload, ok := s.carts[key]
	s.mu.RUnlock()
	if !ok {
		return State{}, nil
	}
	return Decode(payload)
}

func (s *MemoryStore) Save(_ context.Context, key string, state State) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[key] = payload
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored carts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(namespace, session string) string
}

// RedisStore persists carts as JSON strings without expiry.
type RedisStore struct {
	client    kv
	namespace string
}

// NewRedisStore builds a RedisStore writing under namespace.
func NewRedisStore(client kv, namespace string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if namespace == "" {
		return nil, errors.New("cart namespace required")
	}
	return &RedisStore{client: client, namespace: namespace}, nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (State, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(s.namespace, key))
	if errors.Is(err, redisclient.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load cart: %w", err)
	}
	return Decode([]byte(raw))
}

func (s *RedisStore) Save(ctx context.Context, key string, state State) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.client.CartKey(s.namespace, key), string(payload), 0); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
