package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/phonebook/internal/models"
)

// AuditRepo persists audit log entries.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Log records an audit entry. action is create|update|delete; resourceType is entry.
func (r *AuditRepo) Log(ctx context.Context, actor, action, resourceType, resourceID, details string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor, action, resource_type, resource_id, details) VALUES ($1, $2, $3, $4, $5)`,
		actor, action, resourceType, resourceID, details,
	)
	return err
}

// ListByActor returns the actor's most recent audit entries, newest first.
func (r *AuditRepo) ListByActor(ctx context.Context, actor string, limit int) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor, action, resource_type, resource_id, COALESCE(details,''), created_at FROM audit_log WHERE actor = $1 ORDER BY created_at DESC LIMIT $2`,
		actor, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.ResourceType, &e.ResourceID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneBefore deletes audit entries created before cutoff and returns how many were removed.
func (r *AuditRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
