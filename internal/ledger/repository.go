package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daymatch/daymatch-backend/internal/common/database"
)

// Repository is the append-only store for ledger entries. Entries are never
// edited or removed. WithTx scopes the repository to a caller-owned
// transaction so balance reads and debits can share one atomic unit.
type Repository interface {
	WithTx(tx *sqlx.Tx) Repository
	GetBalance(ctx context.Context, userID int64) (int64, error)
	AppendEntry(ctx context.Context, entry *Entry) error
	ListByUser(ctx context.Context, userID int64) ([]*Entry, error)
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

// GetBalance sums all entries for the user. A user with no entries has
// balance 0, not an error. When called through WithTx the sum is computed
// inside the same transaction as any dependent debit.
func (r *postgresRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	query := `SELECT COALESCE(SUM(token_amount), 0) FROM ledger_entries WHERE user_id = $1`

	if err := sqlx.GetContext(ctx, r.ext, &balance, query, userID); err != nil {
		return 0, database.TranslateError(err, "")
	}
	return balance, nil
}

func (r *postgresRepository) AppendEntry(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
        INSERT INTO ledger_entries (
            id, user_id, transaction_type, token_amount, amount_usd, description
        ) VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `

	err := r.ext.QueryRowxContext(
		ctx, query,
		entry.ID, entry.UserID, entry.TransactionType,
		entry.TokenAmount, entry.AmountUSD, entry.Description,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return database.TranslateError(err, "ledger entry already exists")
	}

	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID int64) ([]*Entry, error) {
	var entries []*Entry
	query := `
        SELECT id, user_id, transaction_type, token_amount, amount_usd, description, created_at
        FROM ledger_entries
        WHERE user_id = $1
        ORDER BY created_at DESC
    `

	if err := sqlx.SelectContext(ctx, r.ext, &entries, query, userID); err != nil {
		return nil, database.TranslateError(err, "")
	}
	return entries, nil
}
