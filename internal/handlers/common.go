// Package handlers provides the JSON HTTP handlers for the gateway.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "adaptivebeta/internal/errors"
)

// errorBody is the JSON error envelope. detail carries the message on its own
// for clients that only read that field.
type errorBody struct {
	Detail string      `json:"detail"`
	Error  errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeRawJSON writes an already encoded JSON document.
func writeRawJSON(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// writeError maps err onto its HTTP status and the JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
	}

	msg := err.Error()
	writeJSON(w, status, errorBody{
		Detail: msg,
		Error: errorDetail{
			Code:    apperrors.Code(err),
			Message: msg,
		},
	})
}
