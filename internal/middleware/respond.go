package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the same {"error": msg} body the handlers use.
func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
