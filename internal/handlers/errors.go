package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/crucial707/phonebook/internal/auth"
	"github.com/crucial707/phonebook/internal/middleware"
	"github.com/crucial707/phonebook/internal/phonebook"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// MessageResponse is the body of operations that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service sentinels onto status codes. Anything else is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrDuplicateIdentity):
		JSONError(w, auth.ErrDuplicateIdentity.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidInput):
		JSONError(w, auth.ErrInvalidInput.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.Unauthorized(w, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		middleware.Unauthorized(w, auth.ErrUnauthorized.Error())
	case errors.Is(err, phonebook.ErrNotFound):
		JSONError(w, phonebook.ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, phonebook.ErrInvalidEntry):
		JSONError(w, phonebook.ErrInvalidEntry.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// ==========================
// Validation
// ==========================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput writes a 400 and returns false when input fails its validate tags.
func validateInput(w http.ResponseWriter, input interface{}) bool {
	err := validate.Struct(input)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		JSONError(w, "validation failed", http.StatusBadRequest)
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "required"
		case "email":
			fields[fe.Field()] = "must be a valid email"
		case "max":
			fields[fe.Field()] = "must be at most " + fe.Param() + " characters"
		default:
			fields[fe.Field()] = "invalid"
		}
	}
	JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
	return false
}
