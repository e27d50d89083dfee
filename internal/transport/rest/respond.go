package rest

import (
	"encoding/json"
	"net/http"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

// Error codes of the JSON error body.
const (
	CodeValidation  = "validation_error"
	CodeNotFound    = "not_found"
	CodeInvalidBody = "invalid_body"
	CodeQuery       = "query_error"
	CodeInternal    = "internal"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`

	// Set on query_error only.
	Field    string `json:"field,omitempty"`
	Selector string `json:"selector,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string, fields ...domain.FieldError) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message, Fields: fields})
}
