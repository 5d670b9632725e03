package dates

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
	"github.com/daymatch/daymatch-backend/internal/common/database"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository
	Create(ctx context.Context, d *DateRecord) error
	GetByPairAndDay(ctx context.Context, userA, userB int64, day string) (*DateRecord, error)
	// GetByPairAndDayForUpdate locks the row for the duration of the
	// caller's transaction so concurrent participant updates serialize.
	GetByPairAndDayForUpdate(ctx context.Context, userA, userB int64, day string) (*DateRecord, error)
	Update(ctx context.Context, d *DateRecord) error
	ListUpcoming(ctx context.Context, userID int64) ([]*DateRecord, error)
}

type postgresRepository struct {
	ext sqlx.ExtContext
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{ext: db}
}

func (r *postgresRepository) WithTx(tx *sqlx.Tx) Repository {
	return &postgresRepository{ext: tx}
}

func (r *postgresRepository) Create(ctx context.Context, d *DateRecord) error {
	query := `
        INSERT INTO dates (
            user_from, user_to, day, time, location_metadata,
            user_from_approved, user_to_approved, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `

	err := r.ext.QueryRowxContext(
		ctx, query,
		d.UserFrom, d.UserTo, d.Day, d.Time, d.LocationMetadata,
		d.UserFromApproved, d.UserToApproved, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return database.TranslateError(err, "Date already exists")
	}

	return nil
}

const pairAndDayQuery = `
    SELECT * FROM dates
    WHERE ((user_from = $1 AND user_to = $2) OR (user_from = $2 AND user_to = $1))
          AND day = $3
`

func (r *postgresRepository) GetByPairAndDay(ctx context.Context, userA, userB int64, day string) (*DateRecord, error) {
	return r.getPair(ctx, pairAndDayQuery, userA, userB, day)
}

func (r *postgresRepository) GetByPairAndDayForUpdate(ctx context.Context, userA, userB int64, day string) (*DateRecord, error) {
	return r.getPair(ctx, pairAndDayQuery+" FOR UPDATE", userA, userB, day)
}

func (r *postgresRepository) getPair(ctx context.Context, query string, userA, userB int64, day string) (*DateRecord, error) {
	var d DateRecord
	err := sqlx.GetContext(ctx, r.ext, &d, query, userA, userB, day)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("date not found")
	}
	if err != nil {
		return nil, database.TranslateError(err, "")
	}
	return &d, nil
}

func (r *postgresRepository) Update(ctx context.Context, d *DateRecord) error {
	query := `
        UPDATE dates
        SET time = $2, location_metadata = $3,
            user_from_approved = $4, user_to_approved = $5,
            status = $6, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING updated_at
    `

	err := r.ext.QueryRowxContext(
		ctx, query,
		d.ID, d.Time, d.LocationMetadata,
		d.UserFromApproved, d.UserToApproved, d.Status,
	).Scan(&d.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperr.NotFound("date not found")
	}
	if err != nil {
		return database.TranslateError(err, "")
	}

	return nil
}

func (r *postgresRepository) ListUpcoming(ctx context.Context, userID int64) ([]*DateRecord, error) {
	var records []*DateRecord
	query := `
        SELECT * FROM dates
        WHERE (user_from = $1 OR user_to = $1)
              AND status NOT IN ('cancelled', 'completed')
        ORDER BY day DESC
    `

	if err := sqlx.SelectContext(ctx, r.ext, &records, query, userID); err != nil {
		return nil, database.TranslateError(err, "")
	}
	return records, nil
}
