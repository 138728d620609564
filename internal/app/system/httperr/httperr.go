// internal/app/system/httperr/httperr.go

// Package httperr converts faults into the API's JSON error contract.
//
// Every handler catches its own faults and maps them to one of the
// responses below; nothing propagates to the client unconverted. Bodies are
// always {"message": "..."} with a status conveying the error kind:
// 400 validation, 401 unauthenticated, 403 forbidden, 404 not found,
// 409 conflict, 500 unexpected. Detail goes to the server log only.
package httperr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrorLogger writes JSON error responses and logs server-side detail.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger backed by the given zap logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// messageBody is the uniform error envelope.
type messageBody struct {
	Message string `json:"message"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes the {"message": ...} envelope with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, messageBody{Message: msg})
}

func (e *ErrorLogger) write(w http.ResponseWriter, r *http.Request, status int, logMsg string, err error, userMsg string) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if status >= http.StatusInternalServerError {
		e.log.Error(logMsg, fields...)
	} else {
		e.log.Warn(logMsg, fields...)
	}
	WriteMessage(w, status, userMsg)
}

// BadRequest responds 400 with a caller-facing message.
func (e *ErrorLogger) BadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.write(w, r, http.StatusBadRequest, logMsg, err, userMsg)
}

// ValidationFailed responds 400 naming the missing fields.
func (e *ErrorLogger) ValidationFailed(w http.ResponseWriter, r *http.Request, missing []string) {
	msg := fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))
	e.write(w, r, http.StatusBadRequest, "validation failed", nil, msg)
}

// Unauthorized responds 401. The message stays generic so callers cannot
// tell which part of a credential was wrong.
func (e *ErrorLogger) Unauthorized(w http.ResponseWriter, r *http.Request, logMsg string) {
	e.write(w, r, http.StatusUnauthorized, logMsg, nil, "authentication required")
}

// Forbidden responds 403.
func (e *ErrorLogger) Forbidden(w http.ResponseWriter, r *http.Request, logMsg string) {
	e.write(w, r, http.StatusForbidden, logMsg, nil, "insufficient permissions")
}

// NotFound responds 404 naming the resource kind only, never the id detail.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request, what string) {
	e.write(w, r, http.StatusNotFound, what+" not found", nil, what+" not found")
}

// Conflict responds 409 for duplicate unique fields on create.
func (e *ErrorLogger) Conflict(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.write(w, r, http.StatusConflict, logMsg, err, userMsg)
}

// Internal responds 500 with a generic message; err detail is logged only.
func (e *ErrorLogger) Internal(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	e.write(w, r, http.StatusInternalServerError, logMsg, err, "server error")
}
