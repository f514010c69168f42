package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_ClassifiesPlainErrors(t *testing.T) {
	cause := errors.New("connection refused")

	err := Store(fmt.Errorf("select rows: %w", cause))

	appErr, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, CodeStoreUnavailable, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}

func TestStore_KeepsAppErrors(t *testing.T) {
	original := NewProductNotFound("P-500")

	err := Store(fmt.Errorf("resolve: %w", original))

	assert.True(t, HasCode(err, CodeProductNotFound))
	assert.True(t, IsNotFound(err))
	assert.Nil(t, Store(nil))
}

func TestNewInsufficientStock_Details(t *testing.T) {
	err := NewInsufficientStock("500ml Water", 8, 5)

	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(err))
	assert.Equal(t, "500ml Water", err.Details["product"])
	assert.Equal(t, int64(8), err.Details["requested"])
	assert.Equal(t, int64(5), err.Details["available"])
	assert.Contains(t, err.Message, "500ml Water")
	assert.True(t, IsInsufficientStock(err))
}

func TestGetHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}
