package memory

import (
	"context"
	"sort"
	"time"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/entity"
	"aquaplant/internal/core/id"
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/catalog"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/domain/production"
	"aquaplant/internal/domain/stock"
)

// --- Products ---

// ProductRepo implements catalog.Repository.
type ProductRepo struct{ s *Store }

var _ catalog.Repository = (*ProductRepo)(nil)

// Put inserts or replaces a product. A nil ID is generated.
func (r *ProductRepo) Put(p catalog.Product) catalog.Product {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	r.s.products[p.SN] = p
	return p
}

// Delete removes a product from the catalog.
func (r *ProductRepo) Delete(sn string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, sn)
}

func (r *ProductRepo) GetBySN(_ context.Context, sn string) (*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	p, ok := r.s.products[sn]
	if !ok {
		return nil, apperror.NewProductNotFound(sn)
	}
	return &p, nil
}

func (r *ProductRepo) GetByID(_ context.Context, productID id.ID) (*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	for _, p := range r.s.products {
		if p.ID == productID {
			return &p, nil
		}
	}
	return nil, apperror.NewProductNotFound(productID.String())
}

func (r *ProductRepo) List(_ context.Context) ([]catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SN < out[j].SN })
	return out, nil
}

// --- Stock ---

// StockRepo implements stock.Repository.
type StockRepo struct{ s *Store }

var _ stock.Repository = (*StockRepo)(nil)

// Set overwrites the quantity of a product at loc, creating the row if needed.
func (r *StockRepo) Set(loc stock.Location, ref stock.ProductRef, qty int64) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := stockKey{loc, ref.SN}
	row, ok := r.s.stock[k]
	if !ok {
		row = *stock.Placeholder(ref)
		row.BaseRow = entity.NewBaseRow(time.Now())
	}
	row.Quantity = qty
	r.s.stock[k] = row
}

func (r *StockRepo) Find(_ context.Context, loc stock.Location, sn string) (*stock.Row, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	row, ok := r.s.stock[stockKey{loc, sn}]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *StockRepo) FindForUpdate(ctx context.Context, loc stock.Location, sn string) (*stock.Row, error) {
	return r.Find(ctx, loc, sn)
}

func (r *StockRepo) Increment(_ context.Context, loc stock.Location, ref stock.ProductRef, qty int64, at time.Time) (*stock.Row, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	k := stockKey{loc, ref.SN}
	row, ok := r.s.stock[k]
	if ok {
		total, fits := types.AddQty(row.Quantity, qty)
		if !fits {
			return nil, apperror.NewQuantityOverflow(row.Quantity, qty).
				WithDetail("product_sn", ref.SN)
		}
		row.Quantity = total
		row.Touch(at)
	} else {
		row = *stock.Placeholder(ref)
		row.BaseRow = entity.NewBaseRow(at)
		row.Quantity = qty
	}
	r.s.stock[k] = row
	return &row, nil
}

func (r *StockRepo) Decrement(_ context.Context, loc stock.Location, sn string, qty int64, at time.Time) (*stock.Row, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	k := stockKey{loc, sn}
	row, ok := r.s.stock[k]
	if !ok || row.Quantity < qty {
		return nil, apperror.NewInsufficientStock(sn, qty, row.Quantity)
	}
	row.Quantity -= qty
	row.Touch(at)
	r.s.stock[k] = row
	return &row, nil
}

func (r *StockRepo) List(_ context.Context, loc stock.Location) ([]stock.Row, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	out := make([]stock.Row, 0)
	for k, row := range r.s.stock {
		if k.loc == loc {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductSN < out[j].ProductSN })
	return out, nil
}

// --- Raw materials ---

// MaterialRepo implements materials.Repository.
type MaterialRepo struct{ s *Store }

var _ materials.Repository = (*MaterialRepo)(nil)

// Put inserts or replaces a raw material row.
func (r *MaterialRepo) Put(m materials.RawMaterial) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.IsNew() {
		m.BaseRow = entity.NewBaseRow(time.Now())
	}
	m.ActualCount = cloneCount(m.ActualCount)
	r.s.materials[m.Key()] = m
}

// Get returns a copy of a row for inspection.
func (r *MaterialRepo) Get(key materials.Key) (materials.RawMaterial, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.materials[key]
	m.ActualCount = cloneCount(m.ActualCount)
	return m, ok
}

func (r *MaterialRepo) GetForUpdate(_ context.Context, key materials.Key) (*materials.RawMaterial, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	m, ok := r.s.materials[key]
	if !ok {
		return nil, apperror.NewMaterialNotFound(key.Material, key.Variant)
	}
	m.ActualCount = cloneCount(m.ActualCount)
	return &m, nil
}

func (r *MaterialRepo) UpdateQuantities(_ context.Context, m *materials.RawMaterial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(); err != nil {
		return err
	}
	if _, ok := r.s.materials[m.Key()]; !ok {
		return apperror.NewMaterialNotFound(m.Material, m.Variant)
	}
	cp := *m
	cp.ActualCount = cloneCount(m.ActualCount)
	r.s.materials[m.Key()] = cp
	return nil
}

func (r *MaterialRepo) List(_ context.Context) ([]materials.RawMaterial, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	out := make([]materials.RawMaterial, 0, len(r.s.materials))
	for _, m := range r.s.materials {
		m.ActualCount = cloneCount(m.ActualCount)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Material != out[j].Material {
			return out[i].Material < out[j].Material
		}
		return out[i].Variant < out[j].Variant
	})
	return out, nil
}

func cloneCount(c *int64) *int64 {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

// --- Daily production ---

// ProductionRepo implements production.Repository.
type ProductionRepo struct{ s *Store }

var _ production.Repository = (*ProductionRepo)(nil)

// LockProduct is a no-op: memory transactions are already serialized.
func (r *ProductionRepo) LockProduct(context.Context, string) error {
	return r.s.failure()
}

func (r *ProductionRepo) FindForDay(_ context.Context, sn string, day types.DayWindow) (*production.DailyProduction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	for _, row := range r.s.production {
		if row.ProductSN == sn && day.Contains(row.CreatedAt) {
			return &row, nil
		}
	}
	return nil, nil
}

func (r *ProductionRepo) Insert(_ context.Context, row *production.DailyProduction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(); err != nil {
		return err
	}
	r.s.production = append(r.s.production, *row)
	return nil
}

func (r *ProductionRepo) UpdateQuantity(_ context.Context, row *production.DailyProduction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(); err != nil {
		return err
	}
	for i := range r.s.production {
		if r.s.production[i].ID == row.ID {
			r.s.production[i] = *row
			return nil
		}
	}
	return apperror.NewNotFound("daily_production", row.ID)
}

func (r *ProductionRepo) ListForDay(_ context.Context, day types.DayWindow) ([]production.DailyProduction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	out := make([]production.DailyProduction, 0)
	for _, row := range r.s.production {
		if day.Contains(row.CreatedAt) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductSN < out[j].ProductSN })
	return out, nil
}

// All returns every daily production row.
func (r *ProductionRepo) All() []production.DailyProduction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]production.DailyProduction(nil), r.s.production...)
}

// --- Journal ---

// Journal implements stock.Journal.
type Journal struct{ s *Store }

var (
	_ stock.Journal       = (*Journal)(nil)
	_ stock.JournalReader = (*Journal)(nil)
)

func (j *Journal) Record(_ context.Context, entry stock.JournalEntry) error {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	if err := j.s.failure(); err != nil {
		return err
	}
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	j.s.journal = append(j.s.journal, entry)
	return nil
}

func (j *Journal) History(_ context.Context, productSN string, limit int) ([]stock.JournalEntry, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	if err := j.s.failure(); err != nil {
		return nil, err
	}
	out := make([]stock.JournalEntry, 0)
	for i := len(j.s.journal) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if e := j.s.journal[i]; productSN == "" || e.ProductSN == productSN {
			out = append(out, e)
		}
	}
	return out, nil
}

// Entries returns the recorded entries.
func (j *Journal) Entries() []stock.JournalEntry {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	return append([]stock.JournalEntry(nil), j.s.journal...)
}
