// Package memory provides an in-process implementation of every repository.
// It backs the server in demo mode (STORAGE=memory) and the domain tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"aquaplant/internal/core/tx"
	"aquaplant/internal/domain/catalog"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/domain/production"
	"aquaplant/internal/domain/stock"
)

type stockKey struct {
	loc stock.Location
	sn  string
}

// Store holds all tables in memory.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products   map[string]catalog.Product
	stock      map[stockKey]stock.Row
	materials  map[materials.Key]materials.RawMaterial
	production []production.DailyProduction
	journal    []stock.JournalEntry

	fail error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		products:  make(map[string]catalog.Product),
		stock:     make(map[stockKey]stock.Row),
		materials: make(map[materials.Key]materials.RawMaterial),
	}
}

var _ tx.Manager = (*Store)(nil)

type txKey struct{}

type snapshot struct {
	products   map[string]catalog.Product
	stock      map[stockKey]stock.Row
	materials  map[materials.Key]materials.RawMaterial
	production []production.DailyProduction
	journal    []stock.JournalEntry
}

// RunInTransaction serializes transactions and restores the previous state
// when fn fails. Nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := snapshot{
		products:   maps.Clone(s.products),
		stock:      maps.Clone(s.stock),
		materials:  maps.Clone(s.materials),
		production: append([]production.DailyProduction(nil), s.production...),
		journal:    append([]stock.JournalEntry(nil), s.journal...),
	}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.products = snap.products
		s.stock = snap.stock
		s.materials = snap.materials
		s.production = snap.production
		s.journal = snap.journal
		s.mu.Unlock()
		return err
	}
	return nil
}

// FailWith makes every subsequent repository call return err (nil clears it).
// Used to simulate an unreachable store.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Store) failure() error {
	return s.fail
}

// Products returns the catalog repository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Stock returns the stock repository.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// Materials returns the raw material repository.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{s: s} }

// Production returns the daily production repository.
func (s *Store) Production() *ProductionRepo { return &ProductionRepo{s: s} }

// Journal returns the movement journal.
func (s *Store) Journal() *Journal { return &Journal{s: s} }

// Ping reports the simulated store failure, if any.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fail
}
