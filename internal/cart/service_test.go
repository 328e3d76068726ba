package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	items map[uuid.UUID]CatalogItem
}

func (s stubCatalog) CartItem(_ context.Context, id uuid.UUID) (CatalogItem, error) {
	it, ok := s.items[id]
	if !ok {
		return CatalogItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return it, nil
}

type stubRecorder struct {
	mu    sync.Mutex
	calls map[string]int
	fails int
}

func (r *stubRecorder) IncCartMutation(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[op]++
	if err != nil {
		r.fails++
	}
}

func newTestService(t *testing.T) (Service, uuid.UUID, uuid.UUID, *stubRecorder) {
	t.Helper()
	available := uuid.New()
	soldOut := uuid.New()
	thali := item(available.String(), "180")
	gone := item(soldOut.String(), "90")
	gone.IsAvailable = false

	rec := &stubRecorder{}
	svc, err := NewService(NewMemoryStore(), stubCatalog{items: map[uuid.UUID]CatalogItem{
		available: thali,
		soldOut:   gone,
	}}, rec, nil)
	require.NoError(t, err)
	return svc, available, soldOut, rec
}

func TestServiceAddAndGet(t *testing.T) {
	ctx := context.Background()
	svc, id, _, rec := newTestService(t)

	_, err := svc.AddItem(ctx, "guest:s1", id)
	require.NoError(t, err)
	state, err := svc.AddItem(ctx, "guest:s1", id)
	require.NoError(t, err)
	assert.Equal(t, 2, state.ItemCount)

	loaded, err := svc.Get(ctx, "guest:s1")
	require.NoError(t, err)
	assert.Equal(t, "360.00", loaded.Total.StringFixed(2))
	assert.Equal(t, 2, rec.calls["add"])

	other, err := svc.Get(ctx, "guest:s2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestServiceAddUnknownItem(t *testing.T) {
	svc, _, _, rec := newTestService(t)

	_, err := svc.AddItem(context.Background(), "guest:s1", uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, 1, rec.fails)
}

func TestServiceAddUnavailableItem(t *testing.T) {
	svc, _, soldOut, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), "guest:s1", soldOut)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceUpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	svc, id, _, _ := newTestService(t)
	key := "user:" + uuid.NewString()

	_, err := svc.AddItem(ctx, key, id)
	require.NoError(t, err)

	state, err := svc.UpdateQuantity(ctx, key, id, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, state.ItemCount)

	state, err = svc.UpdateQuantity(ctx, key, id, 0)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())

	_, err = svc.AddItem(ctx, key, id)
	require.NoError(t, err)
	state, err = svc.RemoveItem(ctx, key, id)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())

	_, err = svc.AddItem(ctx, key, id)
	require.NoError(t, err)
	state, err = svc.Clear(ctx, key)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
	assert.True(t, state.Total.IsZero())
}

func TestServiceConcurrentAddsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc, id, _, _ := newTestService(t)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "guest:busy", id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := svc.Get(ctx, "guest:busy")
	require.NoError(t, err)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 25, state.ItemCount)
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (State, error) { return State{}, nil }
func (failingStore) Save(context.Context, string, State) error {
	return errors.New("redis down")
}

func TestServiceStoreFailureIsDependencyError(t *testing.T) {
	id := uuid.New()
	svc, err := NewService(failingStore{}, stubCatalog{items: map[uuid.UUID]CatalogItem{id: item(id.String(), "10")}}, nil, nil)
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), "guest:x", id)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, stubCatalog{}, nil, nil)
	assert.Error(t, err)
	_, err = NewService(NewMemoryStore(), nil, nil, nil)
	assert.Error(t, err)
}

func TestSessionKey(t *testing.T) {
	userID := uuid.New()
	key, err := SessionKey(&userID, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "user:"+userID.String(), key)

	key, err = SessionKey(nil, "  abc  ")
	require.NoError(t, err)
	assert.Equal(t, "guest:abc", key)

	_, err = SessionKey(nil, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	nilID := uuid.Nil
	_, err = SessionKey(&nilID, "")
	assert.Error(t, err)
}
