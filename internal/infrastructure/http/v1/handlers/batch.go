package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/infrastructure/http/v1/middleware"
)

// respondBatch answers a batch form: 200 when at least one item committed or
// every item was skipped, 422 when every attempted item failed. An all-failed
// batch caused by the store is not cached so the form can be resubmitted.
func (h *BaseHandler) respondBatch(c *gin.Context, allFailed bool, errs []*apperror.AppError, data any) {
	if !allFailed {
		h.OK(c, data)
		return
	}
	for _, e := range errs {
		if e != nil && e.Code == apperror.CodeStoreUnavailable {
			middleware.ReleaseIdempotency(c)
			c.JSON(http.StatusUnprocessableEntity, data)
			return
		}
	}
	h.Respond(c, http.StatusUnprocessableEntity, data)
}
