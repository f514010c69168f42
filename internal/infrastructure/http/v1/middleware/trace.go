package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	appctx "aquaplant/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

var tracePropagator = propagation.TraceContext{}

// Trace middleware extracts or generates request and trace IDs.
// A W3C traceparent header wins over X-Trace-ID and is kept on the request
// context so transaction spans join the caller's trace.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := tracePropagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		var traceID, spanID string
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			traceID = sc.TraceID().String()
			spanID = sc.SpanID().String()
		} else {
			traceID = c.GetHeader(HeaderTraceID)
			if traceID == "" {
				traceID = uuid.New().String()
			}
			spanID = uuid.New().String()[:16]
		}

		tc := &appctx.TraceContext{
			TraceID:   traceID,
			SpanID:    spanID,
			RequestID: requestID,
		}
		c.Request = c.Request.WithContext(appctx.WithTrace(ctx, tc))

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
