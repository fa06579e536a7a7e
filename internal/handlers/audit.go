package handlers

import (
	"context"
	"net/http"

	"github.com/crucial707/phonebook/internal/models"
)

// auditListLimit caps GET /audit. The listing is not paginated.
const auditListLimit = 100

// AuditLister reads an actor's audit trail. *repo.AuditRepo implements it.
type AuditLister interface {
	ListByActor(ctx context.Context, actor string, limit int) ([]models.AuditEntry, error)
}

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	Repo AuditLister
}

// ListAudit returns the caller's most recent audit entries, newest first.
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	entries, err := h.Repo.ListByActor(r.Context(), user.Email, auditListLimit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, entries)
}
