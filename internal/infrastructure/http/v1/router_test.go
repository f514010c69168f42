package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/domain/catalog"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/domain/production"
	"aquaplant/internal/domain/stock"
	"aquaplant/internal/infrastructure/http/v1/middleware"
	"aquaplant/internal/infrastructure/storage/memory"
	"aquaplant/pkg/logger"
)

type apiFixture struct {
	store  *memory.Store
	router http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()

	store.Products().Put(catalog.Product{SN: "P-500", Name: "Aqua 500ml", Family: catalog.Family500ml})
	for _, m := range []materials.RawMaterial{
		{Material: materials.MaterialCaps, Variant: "28mm", AvailableQuantity: 10},
		{Material: materials.MaterialLabels, Variant: "500ml", AvailableQuantity: 10},
		{Material: materials.MaterialPreform, Variant: "19.4g", AvailableQuantity: 10},
		{Material: materials.MaterialShrink, Variant: "500ml", AvailableQuantity: 10},
	} {
		store.Materials().Put(m)
	}

	stockSvc := stock.NewService(store.Stock(), store.Products(), store, store.Journal())
	ledger := materials.NewLedger(store.Materials(), materials.DefaultBillOfMaterials(), materials.DefaultConversionTable())
	prodSvc := production.NewService(production.Config{
		Repo:      store.Production(),
		Products:  store.Products(),
		Stock:     stockSvc,
		Materials: ledger,
		TxManager: store,
		Journal:   store.Journal(),
		Location:  time.UTC,
	})

	router := NewRouter(RouterConfig{
		Logger:             logger.NewNop(),
		Production:         prodSvc,
		Stock:              stockSvc,
		Materials:          ledger,
		Journal:            store.Journal(),
		Idempotency:        memory.NewIdempotencyStore(time.Hour),
		IdempotencyEnabled: true,
		Store:              store,
		Storage:            "memory",
		Version:            "test",
	})
	return &apiFixture{store: store, router: router}
}

func (f *apiFixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) factoryQty(t *testing.T, sn string) int64 {
	t.Helper()
	row, err := f.store.Stock().Find(context.Background(), stock.LocationFactory, sn)
	require.NoError(t, err)
	if row == nil {
		return 0
	}
	return row.Quantity
}

type batchBody struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Items     []struct {
		ProductSN string `json:"productSn"`
		Status    string `json:"status"`
		Error     *struct {
			Code string `json:"code"`
		} `json:"error"`
	} `json:"items"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestProduction_Submit(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/production",
		`{"items":[{"productSn":"P-500","quantity":10},{"productSn":"P-500","quantity":0}]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[batchBody](t, w)
	assert.Equal(t, 1, body.Succeeded)
	assert.Equal(t, 1, body.Skipped)
	assert.Equal(t, "done", body.Items[0].Status)
	assert.Equal(t, "skipped", body.Items[1].Status)
	assert.Equal(t, int64(10), f.factoryQty(t, "P-500"))
}

func TestProduction_SubmitAllFailed(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/production", `{"items":[{"productSn":"P-NOPE","quantity":3}]}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[batchBody](t, w)
	assert.Equal(t, 1, body.Failed)
	require.NotNil(t, body.Items[0].Error)
	assert.Equal(t, apperror.CodeProductNotFound, body.Items[0].Error.Code)
}

func TestProduction_SubmitOversizedQuantity(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/production", `{"items":[{"productSn":"P-500","quantity":384307168202282326}]}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	body := decode[batchBody](t, w)
	require.NotNil(t, body.Items[0].Error)
	assert.Equal(t, apperror.CodeValidation, body.Items[0].Error.Code)
	assert.Zero(t, f.factoryQty(t, "P-500"))
	assert.Empty(t, f.store.Production().All())

	m, ok := f.store.Materials().Get(materials.Key{Material: materials.MaterialCaps, Variant: "28mm"})
	require.True(t, ok)
	assert.Equal(t, int64(10), m.AvailableQuantity)
}

func TestProduction_PlanOversizedQuantity(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/production/plan", `{"productSn":"P-500","quantity":384307168202282326}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestProduction_SubmitMissingProductSN(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/production", `{"items":[{"quantity":3}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeValidation)
}

func TestProduction_SubmitEmpty(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/production", `{"items":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProduction_IdempotentReplay(t *testing.T) {
	f := newAPIFixture(t)
	body := `{"items":[{"productSn":"P-500","quantity":4}]}`

	first := f.do(http.MethodPost, "/api/v1/production", body, middleware.HeaderIdempotencyKey, "form-1")
	require.Equal(t, http.StatusOK, first.Code)

	second := f.do(http.MethodPost, "/api/v1/production", body, middleware.HeaderIdempotencyKey, "form-1")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	assert.Equal(t, int64(4), f.factoryQty(t, "P-500"))
}

func TestProduction_IdempotencyKeyReusedForOtherBody(t *testing.T) {
	f := newAPIFixture(t)

	first := f.do(http.MethodPost, "/api/v1/production", `{"items":[{"productSn":"P-500","quantity":4}]}`,
		middleware.HeaderIdempotencyKey, "form-2")
	require.Equal(t, http.StatusOK, first.Code)

	second := f.do(http.MethodPost, "/api/v1/production", `{"items":[{"productSn":"P-500","quantity":5}]}`,
		middleware.HeaderIdempotencyKey, "form-2")
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, int64(4), f.factoryQty(t, "P-500"))
}

func TestProduction_StoreFailureIsNotReplayed(t *testing.T) {
	f := newAPIFixture(t)
	body := `{"items":[{"productSn":"P-500","quantity":2}]}`

	f.store.FailWith(errors.New("connection refused"))
	first := f.do(http.MethodPost, "/api/v1/production", body, middleware.HeaderIdempotencyKey, "form-3")
	require.Equal(t, http.StatusUnprocessableEntity, first.Code)
	failed := decode[batchBody](t, first)
	require.NotNil(t, failed.Items[0].Error)
	assert.Equal(t, apperror.CodeStoreUnavailable, failed.Items[0].Error.Code)

	f.store.FailWith(nil)
	second := f.do(http.MethodPost, "/api/v1/production", body, middleware.HeaderIdempotencyKey, "form-3")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Empty(t, second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int64(2), f.factoryQty(t, "P-500"))
}

func TestProduction_Daily(t *testing.T) {
	f := newAPIFixture(t)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/production", `{"items":[{"productSn":"P-500","quantity":3}]}`).Code)

	w := f.do(http.MethodGet, "/api/v1/production/daily", "")

	require.Equal(t, http.StatusOK, w.Code)
	report := decode[struct {
		Date  string `json:"date"`
		Total int64  `json:"total"`
		Items []struct {
			ProductSN string `json:"productSn"`
			Quantity  int64  `json:"quantity"`
		} `json:"items"`
	}](t, w)
	assert.Equal(t, time.Now().UTC().Format(time.DateOnly), report.Date)
	assert.Equal(t, int64(3), report.Total)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "P-500", report.Items[0].ProductSN)
}

func TestProduction_DailyOtherDayIsEmpty(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/api/v1/production/daily?date=2020-01-01", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"date":"2020-01-01","total":0,"items":[]}`, w.Body.String())
}

func TestProduction_DailyBadDate(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/api/v1/production/daily?date=14-03-2026", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProduction_Plan(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/production/plan", `{"productSn":"P-500","quantity":10}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[struct {
		Family       string           `json:"family"`
		Requirements []map[string]any `json:"requirements"`
	}](t, w)
	assert.Equal(t, string(catalog.Family500ml), plan.Family)
	assert.NotEmpty(t, plan.Requirements)
	assert.Equal(t, int64(0), f.factoryQty(t, "P-500"))
}

func TestTransfers_Submit(t *testing.T) {
	f := newAPIFixture(t)
	p, err := f.store.Products().GetBySN(context.Background(), "P-500")
	require.NoError(t, err)
	f.store.Stock().Set(stock.LocationFactory, stock.RefOf(p), 10)

	w := f.do(http.MethodPost, "/api/v1/transfers",
		`{"items":[{"productSn":"P-500","quantity":4},{"productSn":"P-500","quantity":50}]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[batchBody](t, w)
	assert.Equal(t, 1, body.Succeeded)
	assert.Equal(t, 1, body.Failed)
	require.NotNil(t, body.Items[1].Error)
	assert.Equal(t, apperror.CodeInsufficientStock, body.Items[1].Error.Code)
	assert.Equal(t, int64(6), f.factoryQty(t, "P-500"))

	godown := f.do(http.MethodGet, "/api/v1/stock/godown", "")
	require.Equal(t, http.StatusOK, godown.Code)
	list := decode[struct {
		Count int `json:"count"`
		Items []struct {
			ProductSN string `json:"productSn"`
			Quantity  int64  `json:"quantity"`
		} `json:"items"`
	}](t, godown)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, int64(4), list.Items[0].Quantity)
}

func TestTransfers_AllFailed(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/transfers", `{"items":[{"productSn":"P-500","quantity":1}]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStock_EmptyListsRenderAsArrays(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/api/v1/stock/factory", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())
}

func TestStock_Valuation(t *testing.T) {
	f := newAPIFixture(t)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/production", `{"items":[{"productSn":"P-500","quantity":3}]}`).Code)

	w := f.do(http.MethodGet, "/api/v1/stock/valuation", "")

	require.Equal(t, http.StatusOK, w.Code)
	report := decode[stock.ValuationReport](t, w)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, int64(3), report.Summary.TotalQuantity)
}

func TestStock_Movements(t *testing.T) {
	f := newAPIFixture(t)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/production", `{"items":[{"productSn":"P-500","quantity":3}]}`).Code)

	w := f.do(http.MethodGet, "/api/v1/stock/movements?productSn=P-500&limit=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Count int `json:"count"`
		Items []struct {
			Action string `json:"action"`
		} `json:"items"`
	}](t, w)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "production", list.Items[0].Action)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/stock/movements?limit=0", "").Code)
}

func TestMaterials_List(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/api/v1/materials", "")

	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Count int `json:"count"`
		Items []struct {
			Material string `json:"material"`
			Unit     string `json:"unit"`
		} `json:"items"`
	}](t, w)
	assert.Equal(t, 4, list.Count)
	for _, it := range list.Items {
		assert.NotEmpty(t, it.Unit, it.Material)
	}
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health/ready", "").Code)

	info := f.do(http.MethodGet, "/health/info", "")
	require.Equal(t, http.StatusOK, info.Code)
	assert.Contains(t, info.Body.String(), `"storage":"memory"`)

	f.store.FailWith(errors.New("down"))
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/health/ready", "").Code)
}
