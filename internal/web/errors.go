package web

// errors.go turns service errors into JSON error responses.
//
// The flow:
//  1. A handler gets an error from the service
//  2. It calls respondError(w, r, err)
//  3. statusFor picks the HTTP status from the error's sentinel
//  4. core.MapError picks the client message and support code
//  5. The technical error is logged with the request ID for correlation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/stockmatch/internal/core"
	"github.com/JonMunkholm/stockmatch/internal/extraction"
	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/logging"
)

// ErrorResponse is the body of every error response. Code is stable for
// clients, Message and Action are for display. Details lists rejected
// fields on validation errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// respondError logs err and writes its client-facing form.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if errors.Is(err, inventory.ErrValidation) {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps error sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, inventory.ErrValidation),
		errors.Is(err, extraction.ErrUnsupportedFile),
		errors.Is(err, core.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, extraction.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, extraction.ErrExtractionFailed):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrExtractionNotConfigured),
		errors.Is(err, core.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
