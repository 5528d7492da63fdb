// internal/app/system/httpjson/httpjson.go

// Package httpjson writes JSON API responses with a consistent envelope
// and pairs error responses with structured logging.
package httpjson

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Write sends v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform error envelope for API responses.
type errorBody struct {
	Error string `json:"error"`
}

// Error sends a JSON error envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, errorBody{Error: message})
}

// ErrorLogger pairs zap logging with JSON error responses so handlers
// report failures to both the operator and the client in one call.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

// LogServerError logs err at error level and sends a 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Error(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs err at warn level and sends a 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Warn(logMsg,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Error(w, http.StatusBadRequest, userMsg)
}
