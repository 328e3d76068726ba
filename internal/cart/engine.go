// Package cart owns per-session shopping carts: an ordered list of catalog
// items with quantities plus the derived total and item count.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// CatalogItem is the snapshot of a menu item held by a cart line. The engine
// never modifies it.
type CatalogItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	IsAvailable  bool            `json:"is_available"`
	RestaurantID string          `json:"restaurant_id,omitempty"`
	Image        string          `json:"image,omitempty"`
}

// Line pairs an item with a positive quantity.
type Line struct {
	Item     CatalogItem `json:"item"`
	Quantity int         `json:"quantity"`
}

// Subtotal is price × quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the persisted form of a cart. Lines keep insertion order.
type State struct {
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Line returns the line for itemID.
func (s State) Line(itemID string) (Line, bool) {
	if i := s.indexOf(itemID); i >= 0 {
		return s.Lines[i], true
	}
	return Line{}, false
}

func (s State) indexOf(itemID string) int {
	for i, l := range s.Lines {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	out := State{Total: s.Total, ItemCount: s.ItemCount, Lines: make([]Line, len(s.Lines))}
	copy(out.Lines, s.Lines)
	return out
}

// Totals derives the total and item count from lines.
func Totals(lines []Line) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, l := range lines {
		total = total.Add(l.Subtotal())
		count += l.Quantity
	}
	return total, count
}

// recompute rebuilds the derived fields from scratch. Lines with a
// non-positive quantity are dropped.
func (s *State) recompute() {
	kept := make([]Line, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	s.Lines = kept
	s.Total, s.ItemCount = Totals(kept)
}

// Store persists cart state under a session key.
type Store interface {
	Load(ctx context.Context, key string) (State, error)
	Save(ctx context.Context, key string, state State) error
}

// Engine mutates one session's cart and saves after every mutation.
type Engine struct {
	key   string
	store Store
	state State
}

// Open rehydrates the cart stored under key.
func Open(ctx context.Context, store Store, key string) (*Engine, error) {
	if store == nil {
		return nil, errors.New("cart store required")
	}
	if key == "" {
		return nil, errors.New("cart key required")
	}
	state, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	state.recompute()
	return &Engine{key: key, store: store, state: state}, nil
}

// Key returns the session key the engine is bound to.
func (e *Engine) Key() string {
	return e.key
}

// State returns a copy of the current cart.
func (e *Engine) State() State {
	return e.state.clone()
}

// AddItem increments the line for item or appends a new one with quantity 1.
func (e *Engine) AddItem(ctx context.Context, item CatalogItem) error {
	if i := e.state.indexOf(item.ID); i >= 0 {
		e.state.Lines[i].Quantity++
	} else {
		e.state.Lines = append(e.state.Lines, Line{Item: item, Quantity: 1})
	}
	return e.commit(ctx)
}

// RemoveItem deletes the line for itemID. Absent ids are a no-op.
func (e *Engine) RemoveItem(ctx context.Context, itemID string) error {
	if i := e.state.indexOf(itemID); i >= 0 {
		e.state.Lines = append(e.state.Lines[:i:i], e.state.Lines[i+1:]...)
	}
	return e.commit(ctx)
}

// UpdateQuantity sets the absolute quantity of itemID. A quantity <= 0
// removes the line; absent ids are a no-op.
func (e *Engine) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return e.RemoveItem(ctx, itemID)
	}
	if i := e.state.indexOf(itemID); i >= 0 {
		e.state.Lines[i].Quantity = quantity
	}
	return e.commit(ctx)
}

// Clear empties the cart.
func (e *Engine) Clear(ctx context.Context) error {
	e.state.Lines = nil
	return e.commit(ctx)
}

// Consume takes ordered lines out of the cart: each matching line loses the
// ordered quantity and is dropped once nothing is left. Lines added after the
// order snapshot was taken stay in the cart.
func (e *Engine) Consume(ctx context.Context, ordered []Line) error {
	for _, line := range ordered {
		i := e.state.indexOf(line.Item.ID)
		if i < 0 {
			continue
		}
		if left := e.state.Lines[i].Quantity - line.Quantity; left > 0 {
			e.state.Lines[i].Quantity = left
			continue
		}
		e.state.Lines = append(e.state.Lines[:i:i], e.state.Lines[i+1:]...)
	}
	return e.commit(ctx)
}

func (e *Engine) commit(ctx context.Context) error {
	e.state.recompute()
	return e.store.Save(ctx, e.key, e.state.clone())
}
