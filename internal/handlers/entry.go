package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/phonebook/internal/metrics"
	"github.com/crucial707/phonebook/internal/middleware"
	"github.com/crucial707/phonebook/internal/models"
	"github.com/crucial707/phonebook/internal/phonebook"
)

// AuditLogger records entry mutations. *repo.AuditRepo implements it.
type AuditLogger interface {
	Log(ctx context.Context, actor, action, resourceType, resourceID, details string) error
}

type EntryHandler struct {
	Entries *phonebook.Service
	// Audit is optional; nil disables audit logging.
	Audit AuditLogger
}

// entryInput is the create/update body. Any user_id sent by the client is ignored.
type entryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	PhoneNumber string `json:"phonenumber" validate:"required,max=64"`
}

func decodeEntryInput(w http.ResponseWriter, r *http.Request) (entryInput, bool) {
	var input entryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return input, false
	}
	if !validateInput(w, input) {
		return input, false
	}
	return input, true
}

// currentUser returns the user set by JWTMiddleware. A missing user means the
// route was mounted without the middleware; answer 401 rather than panic.
func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.Unauthorized(w, "not authenticated")
	}
	return user, ok
}

//
// ==========================
// Create Entry
// ==========================
//

func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	input, ok := decodeEntryInput(w, r)
	if !ok {
		return
	}

	entry, err := h.Entries.Create(r.Context(), input.Name, input.PhoneNumber, user)
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}

	metrics.IncEntryOp("create", metrics.OutcomeOK)
	h.audit(r.Context(), user, "create", entry.ID)
	writeJSON(w, entry)
}

//
// ==========================
// List Entries
// ==========================
//

func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	entries, err := h.Entries.List(r.Context(), user)
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}

	metrics.IncEntryOp("list", metrics.OutcomeOK)
	writeJSON(w, entries)
}

//
// ==========================
// Get Entry By ID
// ==========================
//

func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	entry, err := h.Entries.Get(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		h.fail(w, r, "get", err)
		return
	}

	metrics.IncEntryOp("get", metrics.OutcomeOK)
	writeJSON(w, entry)
}

//
// ==========================
// Update Entry
// ==========================
//

func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	input, ok := decodeEntryInput(w, r)
	if !ok {
		return
	}

	entry, err := h.Entries.Update(r.Context(), chi.URLParam(r, "id"), input.Name, input.PhoneNumber, user)
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}

	metrics.IncEntryOp("update", metrics.OutcomeOK)
	h.audit(r.Context(), user, "update", entry.ID)
	writeJSON(w, entry)
}

//
// ==========================
// Delete Entry
// ==========================
//

func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Entries.Delete(r.Context(), id, user); err != nil {
		h.fail(w, r, "delete", err)
		return
	}

	metrics.IncEntryOp("delete", metrics.OutcomeOK)
	h.audit(r.Context(), user, "delete", id)
	writeJSON(w, MessageResponse{Message: "Phonebook entry deleted successfully"})
}

func (h *EntryHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	metrics.IncEntryOp(op, outcomeOf(err, phonebook.ErrNotFound, phonebook.ErrInvalidEntry))
	writeServiceError(w, r, err)
}

// audit failures are logged and never fail the request.
func (h *EntryHandler) audit(ctx context.Context, user models.User, action, entryID string) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Log(ctx, user.Email, action, "entry", entryID, ""); err != nil {
		slog.Warn("audit log failed", "action", action, "entry_id", entryID, "error", err)
	}
}
