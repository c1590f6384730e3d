package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"plata/internal/domain/connection"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// connectionStatus maps the provider error taxonomy onto HTTP statuses.
func connectionStatus(kind connection.Kind) int {
	switch kind {
	case connection.KindNotConnected:
		return http.StatusNotFound
	case connection.KindTokenExpiredNoRefresh, connection.KindRefreshFailed, connection.KindUnauthorized:
		return http.StatusUnauthorized
	case connection.KindCodeExchangeFailed, connection.KindAuthorizationDenied:
		return http.StatusBadRequest
	case connection.KindConfiguration:
		return http.StatusServiceUnavailable
	case connection.KindTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondConnectionError writes a classified provider error; unclassified
// errors become opaque 500s.
func respondConnectionError(w http.ResponseWriter, err error) {
	kind := connection.KindOf(err)
	if kind == "" {
		log.Printf("Unclassified connection error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var cerr *connection.Error
	message := "provider request failed"
	if errors.As(err, &cerr) && cerr.Message != "" {
		message = cerr.Message
	}
	writeJSON(w, connectionStatus(kind), map[string]string{
		"error":   string(kind),
		"message": message,
	})
}
