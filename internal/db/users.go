package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tgienger/tick/internal/models"
)

const userColumns = "id, COALESCE(email, ''), COALESCE(password, ''), COALESCE(full_name, '')"

// InsertUser registers a user and returns the new ID. The email check and the
// insert are one statement, so a concurrent registration with the same email
// cannot slip in between; the loser gets models.ErrEmailTaken and ID 0.
func (db *DB) InsertUser(ctx context.Context, u *models.User) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO users (email, password, full_name)
		SELECT ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE email = ?)
	`, u.Email, u.Password, u.FullName, u.Email)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, models.ErrEmailTaken
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = id

	db.changed(TableUsers)
	return id, nil
}

// UpdateUser overwrites the user with the given ID
func (db *DB) UpdateUser(ctx context.Context, u models.User) error {
	result, err := db.ExecContext(ctx, `
		UPDATE users SET email = ?, password = ?, full_name = ? WHERE id = ?
	`, u.Email, u.Password, u.FullName, u.ID)
	if err != nil {
		return err
	}
	if touched(result) {
		db.changed(TableUsers)
	}
	return nil
}

// GetUserByEmail looks a user up by email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.queryUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? ORDER BY id LIMIT 1", email)
}

// GetUserByID looks a user up by ID
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.queryUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
}

func (db *DB) queryUser(ctx context.Context, query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Password, &u.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// EmailInUse reports whether an account other than exceptID uses email
func (db *DB) EmailInUse(ctx context.Context, email string, exceptID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email = ? AND id != ?", email, exceptID).Scan(&count)
	return count > 0, err
}

// UserCount returns the number of registered users
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
