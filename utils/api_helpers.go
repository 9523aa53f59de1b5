package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// headers are already sent
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

// RespondData wraps data in a success envelope.
func RespondData(w http.ResponseWriter, data interface{}) {
	RespondJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// RespondError sends an error envelope and records message in the request log.
func RespondError(w http.ResponseWriter, logBuilder *strings.Builder, message string, status int) {
	if logBuilder != nil {
		AddToLogMessage(logBuilder, fmt.Sprintf("[Error %d] %s", status, message))
	}
	RespondJSON(w, status, Envelope{Success: false, Error: message})
}

// RespondAppError maps err onto its HTTP status. Internal causes are logged, never returned.
func RespondAppError(w http.ResponseWriter, logBuilder *strings.Builder, err error) {
	kind := apperr.KindOf(err)
	if logBuilder != nil {
		AddToLogMessage(logBuilder, fmt.Sprintf("cause: %v", err))
	}
	RespondError(w, logBuilder, apperr.Message(err), apperr.HTTPStatus(kind))
}

// CORSMiddleware allows browser clients from any origin
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LatencyMiddleware logs the duration of each request
func LatencyMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	log = logger.OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request served", "method", r.Method, "path", r.URL.Path, "latency", time.Since(start))
		})
	}
}
