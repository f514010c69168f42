package stock_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/catalog"
	"aquaplant/internal/domain/stock"
	"aquaplant/internal/infrastructure/storage/memory"
)

type fixture struct {
	store *memory.Store
	svc   *stock.Service
	p500  catalog.Product
	p1000 catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{store: store}
	f.p500 = store.Products().Put(catalog.Product{
		SN:           "P-500",
		Name:         "Aqua 500ml",
		Family:       catalog.Family500ml,
		FactoryPrice: types.MustMoney("10"),
		GodownPrice:  types.MustMoney("12"),
	})
	f.p1000 = store.Products().Put(catalog.Product{
		SN:           "P-1000",
		Name:         "Aqua 1L",
		FactoryPrice: types.MustMoney("18.5"),
		GodownPrice:  types.MustMoney("20"),
	})
	f.svc = stock.NewService(store.Stock(), store.Products(), store, store.Journal())
	return f
}

func (f *fixture) qty(t *testing.T, loc stock.Location, sn string) int64 {
	t.Helper()
	row, err := f.store.Stock().Find(context.Background(), loc, sn)
	require.NoError(t, err)
	if row == nil {
		return 0
	}
	return row.Quantity
}

func TestTransfer_MovesStock(t *testing.T) {
	f := newFixture(t)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p500), 10)

	res, err := f.svc.Transfer(context.Background(), "P-500", 4)
	require.NoError(t, err)

	assert.Equal(t, int64(6), res.Factory.Quantity)
	assert.Equal(t, int64(4), res.Godown.Quantity)
	assert.Equal(t, "Aqua 500ml", res.Godown.ProductName)
	assert.Equal(t, int64(6), f.qty(t, stock.LocationFactory, "P-500"))
	assert.Equal(t, int64(4), f.qty(t, stock.LocationGodown, "P-500"))

	entries := f.store.Journal().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "godown_transfer", entries[0].Action)
	assert.Equal(t, int64(4), entries[0].Quantity)
}

func TestTransfer_AccumulatesIntoExistingGodownRow(t *testing.T) {
	f := newFixture(t)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p500), 10)
	f.store.Stock().Set(stock.LocationGodown, stock.RefOf(&f.p500), 3)

	res, err := f.svc.Transfer(context.Background(), "P-500", 10)
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.Factory.Quantity)
	assert.Equal(t, int64(13), res.Godown.Quantity)
	assert.Greater(t, res.Godown.Version, 1)
}

func TestTransfer_InsufficientLeavesBothSidesUnchanged(t *testing.T) {
	f := newFixture(t)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p500), 5)

	_, err := f.svc.Transfer(context.Background(), "P-500", 8)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Aqua 500ml", appErr.Details["product"])
	assert.Equal(t, int64(8), appErr.Details["requested"])
	assert.Equal(t, int64(5), appErr.Details["available"])

	assert.Equal(t, int64(5), f.qty(t, stock.LocationFactory, "P-500"))
	assert.Equal(t, int64(0), f.qty(t, stock.LocationGodown, "P-500"))
	assert.Empty(t, f.store.Journal().Entries())
}

func TestTransfer_NoFactoryRow(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Transfer(context.Background(), "P-1000", 1)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "Aqua 1L", appErr.Details["product"])
	assert.Equal(t, int64(0), appErr.Details["available"])
}

func TestTransfer_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Transfer(context.Background(), "NOPE", 1)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeProductNotFound))
}

func TestTransfer_NonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p500), 5)

	for _, q := range []int64{0, -3, types.MaxQuantity + 1} {
		_, err := f.svc.Transfer(context.Background(), "P-500", q)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	}
	assert.Equal(t, int64(5), f.qty(t, stock.LocationFactory, "P-500"))
}

func TestTransfer_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p500), 5)
	f.store.FailWith(errors.New("connection refused"))

	_, err := f.svc.Transfer(context.Background(), "P-500", 1)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeStoreUnavailable))

	f.store.FailWith(nil)
	assert.Equal(t, int64(5), f.qty(t, stock.LocationFactory, "P-500"))
}

func TestTransferBatch_PerItemOutcome(t *testing.T) {
	f := newFixture(t)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p500), 10)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p1000), 2)

	res, err := f.svc.TransferBatch(context.Background(), []stock.TransferItem{
		{ProductSN: "P-500", Quantity: 0},
		{ProductSN: "P-1000", Quantity: 5},
		{ProductSN: "P-500", Quantity: 7},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	assert.Equal(t, stock.ItemSkipped, res.Items[0].Status)
	assert.Equal(t, stock.ItemFailed, res.Items[1].Status)
	assert.Equal(t, apperror.CodeInsufficientStock, res.Items[1].Error.Code)
	assert.Equal(t, stock.ItemDone, res.Items[2].Status)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.AllFailed())

	assert.Equal(t, int64(3), f.qty(t, stock.LocationFactory, "P-500"))
	assert.Equal(t, int64(7), f.qty(t, stock.LocationGodown, "P-500"))
	assert.Equal(t, int64(2), f.qty(t, stock.LocationFactory, "P-1000"))
}

func TestTransferBatch_Empty(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.TransferBatch(context.Background(), nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestCreditFactory_CreatesThenAccumulates(t *testing.T) {
	f := newFixture(t)
	ref := stock.RefOf(&f.p500)

	row, err := f.svc.CreditFactory(context.Background(), ref, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), row.Quantity)
	assert.Equal(t, 1, row.Version)

	row, err = f.svc.CreditFactory(context.Background(), ref, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), row.Quantity)
	assert.Equal(t, 2, row.Version)

	rows, err := f.svc.Snapshot(context.Background(), stock.LocationFactory)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestCreditFactory_RejectsOverflow(t *testing.T) {
	f := newFixture(t)
	ref := stock.RefOf(&f.p500)
	f.store.Stock().Set(stock.LocationFactory, ref, math.MaxInt64-2)

	_, err := f.svc.CreditFactory(context.Background(), ref, 3)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, int64(math.MaxInt64-2), f.qty(t, stock.LocationFactory, "P-500"))

	_, err = f.svc.CreditFactory(context.Background(), ref, types.MaxQuantity+1)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestTransfer_GodownOverflowRollsBack(t *testing.T) {
	f := newFixture(t)
	ref := stock.RefOf(&f.p500)
	f.store.Stock().Set(stock.LocationFactory, ref, 10)
	f.store.Stock().Set(stock.LocationGodown, ref, math.MaxInt64-1)

	_, err := f.svc.Transfer(context.Background(), "P-500", 5)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, int64(10), f.qty(t, stock.LocationFactory, "P-500"))
	assert.Equal(t, int64(math.MaxInt64-1), f.qty(t, stock.LocationGodown, "P-500"))
}

func TestResolve(t *testing.T) {
	f := newFixture(t)

	row, err := f.svc.Resolve(context.Background(), "P-1000")
	require.NoError(t, err)
	assert.Equal(t, int64(0), row.Quantity)
	assert.Equal(t, "Aqua 1L", row.ProductName)
	assert.True(t, row.IsNew())

	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p1000), 9)
	row, err = f.svc.Resolve(context.Background(), "P-1000")
	require.NoError(t, err)
	assert.Equal(t, int64(9), row.Quantity)

	_, err = f.svc.Resolve(context.Background(), "NOPE")
	assert.True(t, apperror.HasCode(err, apperror.CodeProductNotFound))
}

func TestSnapshot_UnknownLocation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Snapshot(context.Background(), stock.Location("warehouse"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestValuation(t *testing.T) {
	f := newFixture(t)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(&f.p500), 10)
	f.store.Stock().Set(stock.LocationGodown, stock.RefOf(&f.p500), 4)
	f.store.Stock().Set(stock.LocationGodown, stock.RefOf(&f.p1000), 2)

	report, err := f.svc.Valuation(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	// Rows are ordered by SN: P-1000 before P-500.
	r1000, r500 := report.Rows[0], report.Rows[1]

	assert.Equal(t, int64(0), r1000.FactoryQty)
	assert.Equal(t, int64(2), r1000.GodownQty)
	assert.True(t, r1000.Value.Equal(types.MustMoney("40")))

	assert.Equal(t, int64(14), r500.TotalQuantity)
	assert.True(t, r500.FactoryValue.Equal(types.MustMoney("100")))
	assert.True(t, r500.GodownValue.Equal(types.MustMoney("48")))
	assert.True(t, r500.Value.Equal(types.MustMoney("148")))

	assert.Equal(t, int64(16), report.Summary.TotalQuantity)
	assert.True(t, report.Summary.TotalValue.Equal(types.MustMoney("188")))
	assert.True(t, report.Summary.TotalValue.Equal(report.Summary.FactoryValue.Add(report.Summary.GodownValue)))
}
