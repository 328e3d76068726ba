package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	redisclient "github.com/delish-app/tiffin-backend/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", redisclient.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) CartKey(namespace, session string) string {
	return "tiffin:" + namespace + ":" + session
}

func sampleState() State {
	state := State{Lines: []Line{
		{Item: item("a", "149.99"), Quantity: 2},
		{Item: item("b", "35"), Quantity: 1},
	}}
	state.recompute()
	return state
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := sampleState()

	payload, err := Encode(original)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"item_count":3`)
	assert.Contains(t, string(payload), `"total":"334.98"`)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Len(t, decoded.Lines, 2)
	assert.Equal(t, original.ItemCount, decoded.ItemCount)
	assert.True(t, original.Total.Equal(decoded.Total))
	for i := range original.Lines {
		assert.Equal(t, original.Lines[i].Item.ID, decoded.Lines[i].Item.ID)
		assert.Equal(t, original.Lines[i].Quantity, decoded.Lines[i].Quantity)
		assert.True(t, original.Lines[i].Item.Price.Equal(decoded.Lines[i].Item.Price))
	}
}

func TestEncodeEmptyStateUsesEmptyArray(t *testing.T) {
	payload, err := Encode(State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"lines":[],"total":"0","item_count":0}`, string(payload))
}

func TestDecodeRebuildsStaleTotals(t *testing.T) {
	payload := []byte(`{"lines":[{"item":{"id":"x","name":"x","description":"","price":"10","category":"c","is_available":true},"quantity":3}],"total":"1","item_count":1}`)

	state, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, 3, state.ItemCount)
	assert.True(t, decimal.NewFromInt(30).Equal(state.Total))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)

	state, err := Decode(nil)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	empty, err := store.Load(ctx, "guest:none")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	require.NoError(t, store.Save(ctx, "guest:1", sampleState()))
	loaded, err := store.Load(ctx, "guest:1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.ItemCount)
	assert.Equal(t, 1, store.Len())
}

func TestRedisStoreUsesNamespacedKeyWithoutTTL(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store, err := NewRedisStore(kv, "cart-storage")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "guest:1", sampleState()))

	raw, ok := kv.values["tiffin:cart-storage:guest:1"]
	require.True(t, ok)
	assert.Contains(t, raw, `"lines"`)
	assert.Equal(t, time.Duration(0), kv.ttls["tiffin:cart-storage:guest:1"])

	loaded, err := store.Load(ctx, "guest:1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.ItemCount)
	assert.Equal(t, "334.98", loaded.Total.StringFixed(2))
}

func TestRedisStoreMissingKeyIsEmptyCart(t *testing.T) {
	store, err := NewRedisStore(newFakeKV(), "cart-storage")
	require.NoError(t, err)

	state, err := store.Load(context.Background(), "guest:new")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestRedisStoreSurfacesErrors(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	store, err := NewRedisStore(kv, "cart-storage")
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "guest:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = NewRedisStore(nil, "cart-storage")
	assert.Error(t, err)
	_, err = NewRedisStore(kv, "")
	assert.Error(t, err)
}
