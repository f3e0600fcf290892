// Package cart holds the shopper's cart on the client and persists a full
// snapshot after every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/novathreads/storefront-backend/internal/pricing"
	"github.com/novathreads/storefront-backend/pkg/kv"
	"github.com/novathreads/storefront-backend/pkg/logger"
)

const (
	// StorageKey is where the snapshot lives in the client store.
	StorageKey = "novathreads_cart"
	// MaxLineQuantity caps a single line so totals cannot overflow.
	MaxLineQuantity = 9999
)

var (
	ErrInvalidQuantity = fmt.Errorf("cart: quantity must be between 1 and %d", MaxLineQuantity)
	ErrInvalidProduct  = errors.New("cart: product needs an id and a non-negative price")
)

// Product is the part of a catalog product the cart keeps.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// Line is one product variant in the cart.
type Line struct {
	Product       Product `json:"product"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize"`
	SelectedColor string  `json:"selectedColor"`
}

// LineKey identifies a line: the same product in another size or color is a
// different line.
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

// Key returns the line's identity in the cart.
func (l Line) Key() LineKey {
	return LineKey{ProductID: l.Product.ID, Size: l.SelectedSize, Color: l.SelectedColor}
}

// Snapshot is the persisted form. Totals are derived from Items.
type Snapshot struct {
	Items      []Line          `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Store is a single-writer cart. Every mutation persists the whole cart; if
// persisting fails the in-memory cart is rolled back and the error returned.
type Store struct {
	mu    sync.Mutex
	kv    kv.Store
	logg  *logger.Logger
	lines []Line
}

// Open restores the cart from store. Missing or unreadable snapshots yield an
// empty cart.
func Open(ctx context.Context, store kv.Store, logg *logger.Logger) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{kv: store, logg: logg, lines: []Line{}}

	raw, err := store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.restore_failed")
		}
		return s
	}

	lines, dropped, err := decodeSnapshot(raw)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.snapshot_corrupt")
		return s
	}
	if dropped > 0 {
		logg.Warn(logg.WithField(ctx, "dropped", dropped), "cart.lines_dropped")
	}
	s.lines = lines
	return s
}

// decodeSnapshot keeps the valid lines of raw and reports how many it
// skipped. Only an undecodable document is an error.
func decodeSnapshot(raw []byte) ([]Line, int, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, 0, err
	}
	lines := make([]Line, 0, len(snap.Items))
	dropped := 0
	for _, l := range snap.Items {
		if validateLine(l) != nil {
			dropped++
			continue
		}
		lines = append(lines, l)
	}
	return lines, dropped, nil
}

func validateProduct(p Product) error {
	if p.ID == "" || p.Price.IsNegative() {
		return ErrInvalidProduct
	}
	return nil
}

func validateQuantity(q int) error {
	if q < 1 || q > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// validateLine is the rule every stored line satisfies.
func validateLine(l Line) error {
	if err := validateProduct(l.Product); err != nil {
		return err
	}
	return validateQuantity(l.Quantity)
}

// Add merges quantity into the line for (product, size, color), creating it
// when absent. A merged quantity above MaxLineQuantity is rejected.
func (s *Store) Add(ctx context.Context, product Product, quantity int, size, color string) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLines()
	key := LineKey{ProductID: product.ID, Size: size, Color: color}
	merged := false
	for i := range next {
		if next[i].Key() == key {
			if next[i].Quantity > MaxLineQuantity-quantity {
				return ErrInvalidQuantity
			}
			next[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		next = append(next, Line{Product: product, Quantity: quantity, SelectedSize: size, SelectedColor: color})
	}
	return s.commit(ctx, next)
}

// Remove drops the single line identified by key.
func (s *Store) Remove(ctx context.Context, key LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.filter(func(l Line) bool { return l.Key() != key }))
}

// RemoveProduct drops every variant of productID.
func (s *Store) RemoveProduct(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.filter(func(l Line) bool { return l.Product.ID != productID }))
}

// SetQuantity replaces the quantity of the line identified by key. A
// quantity of zero or less removes the line.
func (s *Store) SetQuantity(ctx context.Context, key LineKey, quantity int) error {
	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.commit(ctx, s.filter(func(l Line) bool { return l.Key() != key }))
	}
	next := s.copyLines()
	for i := range next {
		if next[i].Key() == key {
			next[i].Quantity = quantity
		}
	}
	return s.commit(ctx, next)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, []Line{})
}

// Contains reports whether any variant of productID is in the cart.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.Product.ID == productID {
			return true
		}
	}
	return false
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

// TotalItems is the sum of line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.lines)
}

// TotalPrice is the sum of unit price times quantity, unrounded.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.lines)
}

// Snapshot returns the cart with its derived totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.copyLines())
}

// PricingLines adapts the cart for the pricing calculator.
func (s *Store) PricingLines() []pricing.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pricing.Line, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, pricing.Line{UnitPrice: l.Product.Price, Quantity: l.Quantity})
	}
	return out
}

// commit persists next and only then makes it the current cart.
func (s *Store) commit(ctx context.Context, next []Line) error {
	raw, err := json.Marshal(snapshotOf(next))
	if err != nil {
		return fmt.Errorf("cart: encode snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		s.logg.Error(ctx, "cart.persist_failed", err)
		return fmt.Errorf("cart: persist snapshot: %w", err)
	}
	s.lines = next
	return nil
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) filter(keep func(Line) bool) []Line {
	out := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func snapshotOf(lines []Line) Snapshot {
	return Snapshot{Items: lines, TotalItems: totalItems(lines), TotalPrice: totalPrice(lines)}
}

func totalItems(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func totalPrice(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
