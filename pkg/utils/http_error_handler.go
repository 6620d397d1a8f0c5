package utils

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteError sends the API's error envelope: {"status":"error","message":...}.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := errorResponse{Status: "error", Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		Logger.Errorf("failed to encode error response: %v", err)
	}
}
