package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/RuvinSL/token-estimator/pkg/models"
)

func writeJSON(w http.ResponseWriter, log interfaces.Logger, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// sendError sends an error response
func sendError(w http.ResponseWriter, log interfaces.Logger, message string, statusCode int) {
	writeJSON(w, log, statusCode, models.ErrorResponse{
		Error:      message,
		StatusCode: statusCode,
		Timestamp:  time.Now(),
	})
}
