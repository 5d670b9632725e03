// internal/users/directory.go
// Minimal user lookup consumed by the token and matching services. Profile
// CRUD lives elsewhere; the core only needs existence checks and enumeration
// for batch replenishment.

package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
	"github.com/daymatch/daymatch-backend/internal/common/database"
)

type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Zipcode   *string   `json:"zipcode,omitempty" db:"zipcode"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Directory resolves user ids to user records.
type Directory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
	Get(ctx context.Context, userID int64) (*User, error)
	ListIDs(ctx context.Context) ([]int64, error)
}

type postgresDirectory struct {
	db *sqlx.DB
}

func NewPostgresDirectory(db *sqlx.DB) Directory {
	return &postgresDirectory{db: db}
}

func (d *postgresDirectory) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	if err := d.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, database.TranslateError(err, "")
	}
	return exists, nil
}

func (d *postgresDirectory) Get(ctx context.Context, userID int64) (*User, error) {
	var user User
	query := `SELECT id, username, zipcode, created_at FROM users WHERE id = $1`

	err := d.db.GetContext(ctx, &user, query, userID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, database.TranslateError(err, "")
	}

	return &user, nil
}

func (d *postgresDirectory) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := `SELECT id FROM users ORDER BY id`

	if err := d.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, database.TranslateError(err, "")
	}
	return ids, nil
}
