package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lotoemploi/loto-backend/internal/model"
)

// UserRepo provides data access to the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, surname, phone, national_id, email, unique_key, created_at"

// FindOrCreate looks up a user by the normalized identity key derived
// from the four identifying fields and inserts a new row only when none
// exists. Repeated registrations of the same person (any casing, spacing
// or accent variant, with or without email) return the same row. A
// duplicate-key error from a concurrent insert is resolved by re-reading.
func (r *UserRepo) FindOrCreate(ctx context.Context, name, surname, phone, nationalID, email string) (model.User, error) {
	key := model.IdentityKey(name, surname, phone, nationalID)

	u, err := r.getByUniqueKey(ctx, key)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, err
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, surname, phone, national_id, email, unique_key) VALUES (?,?,?,?,?,?)",
		strings.TrimSpace(name), strings.TrimSpace(surname), strings.TrimSpace(phone),
		strings.TrimSpace(nationalID), strings.TrimSpace(email), key)
	if err != nil {
		// MySQL 1062: another request inserted the same identity first.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return r.getByUniqueKey(ctx, key)
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a user by id. Returns ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Phone, &u.NationalID, &u.Email, &u.UniqueKey, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func (r *UserRepo) getByUniqueKey(ctx context.Context, key string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE unique_key=? LIMIT 1", key).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Phone, &u.NationalID, &u.Email, &u.UniqueKey, &u.CreatedAt)
	return u, err
}
