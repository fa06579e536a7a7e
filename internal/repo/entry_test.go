package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/phonebook/internal/models"
)

const testEntryID = "6f1c2a9e-3c1b-4a7e-9a52-0d8f3b1e2c4d"

var entryColumns = []string{"id", "user_id", "name", "phonenumber"}

func TestEntryRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO phonebook_entries \(id, user_id, name, phonenumber\)`).
		WithArgs(testEntryID, "alice@x.com", "Bob", "555-1111").
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(testEntryID, "alice@x.com", "Bob", "555-1111"))

	repo := NewEntryRepo(db)
	entry, err := repo.Create(context.Background(), models.Entry{
		ID: testEntryID, UserID: "alice@x.com", Name: "Bob", PhoneNumber: "555-1111",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.ID != testEntryID || entry.Name != "Bob" || entry.UserID != "alice@x.com" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEntryRepo_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, name, phonenumber\s+FROM phonebook_entries\s+WHERE user_id = \$1`).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow("1", "alice@x.com", "Bob", "555-1111").
			AddRow("2", "alice@x.com", "Carol", "555-2222"))

	repo := NewEntryRepo(db)
	entries, err := repo.ListByOwner(context.Background(), "alice@x.com")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(entries) != 2 || entries[1].Name != "Carol" {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEntryRepo_ListByOwner_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM phonebook_entries`).
		WithArgs("empty@x.com").
		WillReturnRows(sqlmock.NewRows(entryColumns))

	repo := NewEntryRepo(db)
	entries, err := repo.ListByOwner(context.Background(), "empty@x.com")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestEntryRepo_GetByIDAndOwner_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE id = \$1 AND user_id = \$2`).
		WithArgs(testEntryID, "mallory@x.com").
		WillReturnRows(sqlmock.NewRows(entryColumns))

	repo := NewEntryRepo(db)
	_, err = repo.GetByIDAndOwner(context.Background(), testEntryID, "mallory@x.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEntryRepo_UpdateByIDAndOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE phonebook_entries\s+SET name = \$1, phonenumber = \$2\s+WHERE id = \$3 AND user_id = \$4`).
		WithArgs("Bobby", "555-9999", testEntryID, "alice@x.com").
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(testEntryID, "alice@x.com", "Bobby", "555-9999"))

	repo := NewEntryRepo(db)
	entry, err := repo.UpdateByIDAndOwner(context.Background(), testEntryID, "alice@x.com", "Bobby", "555-9999")
	if err != nil {
		t.Fatalf("UpdateByIDAndOwner: %v", err)
	}
	if entry.Name != "Bobby" || entry.PhoneNumber != "555-9999" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEntryRepo_DeleteByIDAndOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM phonebook_entries WHERE id = \$1 AND user_id = \$2`).
		WithArgs(testEntryID, "alice@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM phonebook_entries`).
		WithArgs(testEntryID, "alice@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewEntryRepo(db)
	if err := repo.DeleteByIDAndOwner(context.Background(), testEntryID, "alice@x.com"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.DeleteByIDAndOwner(context.Background(), testEntryID, "alice@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
