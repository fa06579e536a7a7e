package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/phonebook/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

// EntryRepo stores phonebook entries. Every lookup and mutation other than
// Create is filtered by both id and owner.
type EntryRepo struct {
	DB *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{DB: db}
}

// ========================
// CREATE ENTRY
// ========================

func (r *EntryRepo) Create(ctx context.Context, e models.Entry) (models.Entry, error) {
	var entry models.Entry
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO phonebook_entries (id, user_id, name, phonenumber)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, name, phonenumber`,
		e.ID, e.UserID, e.Name, e.PhoneNumber,
	).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Name,
		&entry.PhoneNumber,
	)
	if err != nil && isUniqueViolation(err) {
		return models.Entry{}, ErrDuplicate
	}
	return entry, err
}

// ========================
// LIST ENTRIES BY OWNER
// ========================

func (r *EntryRepo) ListByOwner(ctx context.Context, owner string) ([]models.Entry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, name, phonenumber
		 FROM phonebook_entries
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.PhoneNumber); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ========================
// GET ENTRY BY ID AND OWNER
// ========================

func (r *EntryRepo) GetByIDAndOwner(ctx context.Context, id, owner string) (models.Entry, error) {
	var entry models.Entry
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, name, phonenumber
		 FROM phonebook_entries
		 WHERE id = $1 AND user_id = $2`,
		id, owner,
	).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Name,
		&entry.PhoneNumber,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, ErrNotFound
	}
	return entry, err
}

// ========================
// UPDATE ENTRY BY ID AND OWNER
// ========================

func (r *EntryRepo) UpdateByIDAndOwner(ctx context.Context, id, owner, name, phone string) (models.Entry, error) {
	var entry models.Entry
	err := r.DB.QueryRowContext(ctx,
		`UPDATE phonebook_entries
		 SET name = $1, phonenumber = $2
		 WHERE id = $3 AND user_id = $4
		 RETURNING id, user_id, name, phonenumber`,
		name, phone, id, owner,
	).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Name,
		&entry.PhoneNumber,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, ErrNotFound
	}
	return entry, err
}

// ========================
// DELETE ENTRY BY ID AND OWNER
// ========================

func (r *EntryRepo) DeleteByIDAndOwner(ctx context.Context, id, owner string) error {
	result, err := r.DB.ExecContext(ctx,
		"DELETE FROM phonebook_entries WHERE id = $1 AND user_id = $2",
		id, owner,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
