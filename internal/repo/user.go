package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/phonebook/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	query := `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING email, username, password_hash, created_at
	`

	var user models.User

	err := r.DB.QueryRowContext(ctx, query, u.Email, u.Username, u.PasswordHash).
		Scan(&user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}

	return user, nil
}

// ==========================
// Get By Email
// ==========================
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT email, username, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User

	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}
