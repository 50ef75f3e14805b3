package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorBody carries the message and status of a failed request.
// swagger:model ErrorBody
type ErrorBody struct {
	// Error message
	// example: User not found
	Message string `json:"message"`

	// HTTP status code
	// example: 404
	Status int `json:"status"`
}

// ErrorResponse is the envelope for all error responses.
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Always false
	Success bool `json:"success"`

	// Error details
	Error ErrorBody `json:"error"`
}

// MessageResponse is the envelope for responses that carry only a message.
// swagger:model MessageResponse
type MessageResponse struct {
	// Always true
	Success bool `json:"success"`

	// Human-readable message
	// example: Logged out successfully
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error:   ErrorBody{Message: message, Status: status},
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Success: true, Message: message})
}
