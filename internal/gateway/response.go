package gateway

import (
	"encoding/json"
	"net/http"
)

// errorBody is the gateway's error envelope. availableRoutes is present
// only on 404 responses.
type errorBody struct {
	Error           string   `json:"error"`
	Message         string   `json:"message"`
	AvailableRoutes []string `json:"availableRoutes,omitempty"`
}

func writeGatewayError(w http.ResponseWriter, status int, errText, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: errText, Message: message})
}

func writeNotFound(w http.ResponseWriter, path string, availableRoutes []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(errorBody{
		Error:           "Not Found",
		Message:         "Route " + path + " not found",
		AvailableRoutes: availableRoutes,
	})
}
