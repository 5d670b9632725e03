// internal/ledger/service.go

package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
	"github.com/daymatch/daymatch-backend/internal/common/database"
	"github.com/daymatch/daymatch-backend/internal/users"
)

type Service interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	ListTransactions(ctx context.Context, userID int64) ([]*Entry, error)
	GrantInitialTokens(ctx context.Context, userID int64) (*Entry, error)
	PurchaseTokens(ctx context.Context, userID int64, tokenAmount int64, amountUSD *float64, description string) (*Entry, error)
	ReplenishMonthly(ctx context.Context, userID int64) error
	ReplenishAll(ctx context.Context) (*ReplenishSummary, error)
}

type service struct {
	repo          Repository
	directory     users.Directory
	txRunner      database.TxRunner
	initialGrant  int64
	monthlyAmount int64
}

func NewService(repo Repository, directory users.Directory, txRunner database.TxRunner, initialGrant, monthlyAmount int64) Service {
	return &service{
		repo:          repo,
		directory:     directory,
		txRunner:      txRunner,
		initialGrant:  initialGrant,
		monthlyAmount: monthlyAmount,
	}
}

func (s *service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

func (s *service) ListTransactions(ctx context.Context, userID int64) ([]*Entry, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GrantInitialTokens credits a newly created account. Account registration
// lives in a separate service; its signup flow is the caller, invoking this
// exactly once per new user.
func (s *service) GrantInitialTokens(ctx context.Context, userID int64) (*Entry, error) {
	entry := &Entry{
		UserID:          userID,
		TransactionType: TypeReplenishment,
		TokenAmount:     s.initialGrant,
		Description:     fmt.Sprintf("Initial %d token grant upon account creation", s.initialGrant),
	}

	if err := s.repo.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// PurchaseTokens records a positive purchase credit.
func (s *service) PurchaseTokens(ctx context.Context, userID int64, tokenAmount int64, amountUSD *float64, description string) (*Entry, error) {
	if tokenAmount <= 0 {
		return nil, apperr.InvalidRequest("token amount for purchase must be positive")
	}

	exists, err := s.directory.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user not found")
	}

	entry := &Entry{
		UserID:          userID,
		TransactionType: TypePurchase,
		TokenAmount:     tokenAmount,
		AmountUSD:       amountUSD,
		Description:     description,
	}

	if err := s.repo.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ReplenishMonthly expires the user's remaining balance and grants a fresh
// monthly allotment, atomically. Expiry and grant either both land or
// neither does.
func (s *service) ReplenishMonthly(ctx context.Context, userID int64) error {
	return s.txRunner.RunSerializable(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		balance, err := repo.GetBalance(ctx, userID)
		if err != nil {
			return err
		}

		if balance > 0 {
			expiry := &Entry{
				UserID:          userID,
				TransactionType: TypeDebit,
				TokenAmount:     -balance,
				Description:     fmt.Sprintf("Monthly expiry of %d tokens", balance),
			}
			if err := repo.AppendEntry(ctx, expiry); err != nil {
				return err
			}
		}

		grant := &Entry{
			UserID:          userID,
			TransactionType: TypeReplenishment,
			TokenAmount:     s.monthlyAmount,
			Description:     fmt.Sprintf("Monthly replenishment of %d tokens", s.monthlyAmount),
		}
		return repo.AppendEntry(ctx, grant)
	})
}

// ReplenishAll runs the monthly cycle for every user. A failure for one user
// does not stop the batch.
func (s *service) ReplenishAll(ctx context.Context) (*ReplenishSummary, error) {
	ids, err := s.directory.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ReplenishSummary{}
	for _, id := range ids {
		if err := s.ReplenishMonthly(ctx, id); err != nil {
			log.Printf("monthly replenishment failed for user %d: %v", id, err)
			summary.Failed++
			continue
		}
		summary.Success++
	}

	return summary, nil
}
