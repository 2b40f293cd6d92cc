package responder

import (
	"context"
	"net/http"
)

// ErrorPayload is the body written for every error response.
type ErrorPayload struct {
	Error string `json:"error"`
}

// EchoPayload wraps a bare string response.
type EchoPayload struct {
	Echo string `json:"echo"`
}

func (r *Responder) logError(req *http.Request, meta statusMeta, message, traceID string, status int, msgs []string) {
	logger := r.logger().With("error", message, "traceId", traceID, "status", status)
	if req != nil && req.URL != nil {
		logger = logger.With("method", req.Method, "path", req.URL.Path)
	}
	if len(msgs) > 0 {
		logger = logger.With("logMessages", msgs)
	}
	logger.Log(requestContext(req), meta.logLevel, meta.logMsg)
}

func requestContext(req *http.Request) context.Context {
	if req == nil {
		return context.Background()
	}
	return req.Context()
}
