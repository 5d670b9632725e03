package attraction

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
	"github.com/daymatch/daymatch-backend/internal/common/database"
)

// Repository stores attraction rows. WithTx scopes it to a caller-owned
// transaction so the rating insert and the two-row match update share the
// same atomic unit as the ledger debit.
type Repository interface {
	WithTx(tx *sqlx.Tx) Repository
	Create(ctx context.Context, a *Attraction) error
	Get(ctx context.Context, userFrom, userTo int64, day string) (*Attraction, error)
	SetMatchResult(ctx context.Context, rowID int64, result, firstMessageRights bool) error
	ListByPair(ctx context.Context, userFrom, userTo int64) ([]*Attraction, error)
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

// Create inserts a new rating row. The unique (day, user_from, user_to)
// constraint makes rating submission write-once per triple.
func (r *postgresRepository) Create(ctx context.Context, a *Attraction) error {
	query := `
        INSERT INTO attractions (
            user_from, user_to, day, romantic_rating, sexual_rating, friendship_rating,
            long_term_potential, intellectual, emotional, result, first_message_rights
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at
    `

	err := r.ext.QueryRowxContext(
		ctx, query,
		a.UserFrom, a.UserTo, a.Day,
		a.RomanticRating, a.SexualRating, a.FriendshipRating,
		a.LongTermPotential, a.Intellectual, a.Emotional,
		a.Result, a.FirstMessageRights,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return database.TranslateError(err, "Attraction already exists for this user and date")
	}

	return nil
}

func (r *postgresRepository) Get(ctx context.Context, userFrom, userTo int64, day string) (*Attraction, error) {
	var a Attraction
	query := `
        SELECT * FROM attractions
        WHERE user_from = $1 AND user_to = $2 AND day = $3
    `

	err := sqlx.GetContext(ctx, r.ext, &a, query, userFrom, userTo, day)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("attraction not found")
	}
	if err != nil {
		return nil, database.TranslateError(err, "")
	}

	return &a, nil
}

// SetMatchResult writes the only mutable fields of an attraction row.
func (r *postgresRepository) SetMatchResult(ctx context.Context, rowID int64, result, firstMessageRights bool) error {
	query := `
        UPDATE attractions
        SET result = $2, first_message_rights = $3, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `

	res, err := r.ext.ExecContext(ctx, query, rowID, result, firstMessageRights)
	if err != nil {
		return database.TranslateError(err, "")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("attraction not found")
	}
	return nil
}

func (r *postgresRepository) ListByPair(ctx context.Context, userFrom, userTo int64) ([]*Attraction, error) {
	var attractions []*Attraction
	query := `
        SELECT * FROM attractions
        WHERE user_from = $1 AND user_to = $2
        ORDER BY day DESC
    `

	if err := sqlx.SelectContext(ctx, r.ext, &attractions, query, userFrom, userTo); err != nil {
		return nil, database.TranslateError(err, "")
	}
	return attractions, nil
}
