package server

import (
	"encoding/json"
	"net/http"

	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Error is the error part of an Envelope. Row-level failures list the
// offending rows under Columns.
type Error struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Columns    []string          `json:"columns,omitempty"`
	Offenders  []errors.Offender `json:"offenders,omitempty"`
}

// Envelope wraps every JSON response
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteJSON writes payload with the given status
func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithComponent("server").WithError(err).Warn("write json failed")
	}
}

// Success writes a 200 envelope
func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

// Fail writes an error envelope
func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

// FailError writes err as an error envelope with a status derived from its category
func FailError(w http.ResponseWriter, err error, requestID string) {
	challanErr, ok := errors.AsChallanError(err)
	if !ok {
		challanErr = errors.Unexpected("request", err)
	}

	WriteJSON(w, StatusFor(challanErr), Envelope{
		Success: false,
		Error: &Error{
			Code:       string(challanErr.Code),
			Message:    challanErr.Message,
			Suggestion: challanErr.Suggestion,
			Columns:    challanErr.Columns,
			Offenders:  challanErr.Offenders,
		},
		RequestID: requestID,
	})
}

// StatusFor maps an error to an HTTP status
func StatusFor(err *errors.ChallanError) int {
	switch err.Category {
	case errors.CategoryValidation, errors.CategoryParse, errors.CategoryReconciliation:
		return http.StatusUnprocessableEntity
	case errors.CategoryFile, errors.CategoryConfiguration:
		return http.StatusBadRequest
	case errors.CategoryNetwork:
		switch err.Code {
		case errors.CodeNotFound:
			return http.StatusNotFound
		case errors.CodeTimeout:
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusInternalServerError
	}
}
