// internal/attraction/service.go
// Matching engine: rating submission with atomic solvency enforcement, and
// the reciprocal-match computation.

package attraction

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
	"github.com/daymatch/daymatch-backend/internal/common/database"
	"github.com/daymatch/daymatch-backend/internal/ledger"
	"github.com/daymatch/daymatch-backend/internal/users"
)

type Service interface {
	// SubmitRating validates a rating, debits its token cost, persists it and
	// propagates the match result to both sides, all in one atomic unit.
	SubmitRating(ctx context.Context, raterID int64, dto *SubmitRatingDTO) (*Attraction, error)

	GetAttraction(ctx context.Context, requesterID, userFrom, userTo int64, day string) (*Attraction, error)
	GetAttractionsByPair(ctx context.Context, requesterID, userFrom, userTo int64) ([]*Attraction, error)
}

type service struct {
	repo       Repository
	ledgerRepo ledger.Repository
	directory  users.Directory
	txRunner   database.TxRunner
}

func NewService(repo Repository, ledgerRepo ledger.Repository, directory users.Directory, txRunner database.TxRunner) Service {
	return &service{
		repo:       repo,
		ledgerRepo: ledgerRepo,
		directory:  directory,
		txRunner:   txRunner,
	}
}

func (s *service) SubmitRating(ctx context.Context, raterID int64, dto *SubmitRatingDTO) (*Attraction, error) {
	if raterID == dto.UserTo {
		return nil, apperr.InvalidRequest("userFrom and userTo must be different users")
	}

	exists, err := s.directory.Exists(ctx, dto.UserTo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user not found")
	}

	row := &Attraction{
		UserFrom:          raterID,
		UserTo:            dto.UserTo,
		Day:               database.Date(dto.Date),
		RomanticRating:    dto.RomanticRating,
		SexualRating:      dto.SexualRating,
		FriendshipRating:  dto.FriendshipRating,
		LongTermPotential: dto.LongTermPotential,
		Intellectual:      dto.Intellectual,
		Emotional:         dto.Emotional,
	}
	cost := row.Cost()

	matched := false
	err = s.txRunner.RunSerializable(ctx, func(tx *sqlx.Tx) error {
		ledgerRepo := s.ledgerRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		// Balance is summed inside this transaction; a concurrent submission
		// by the same rater cannot pass the solvency check against a stale
		// value.
		balance, err := ledgerRepo.GetBalance(ctx, raterID)
		if err != nil {
			return err
		}
		if balance < cost {
			return apperr.InsufficientFunds("Insufficient tokens")
		}

		debit := &ledger.Entry{
			UserID:          raterID,
			TransactionType: ledger.TypePurchase,
			TokenAmount:     -cost,
			Description:     "Attraction deduction",
		}
		if err := ledgerRepo.AppendEntry(ctx, debit); err != nil {
			return err
		}

		// A duplicate (day, user_from, user_to) aborts here and rolls the
		// debit back with it.
		if err := repo.Create(ctx, row); err != nil {
			return err
		}

		return s.computeMatch(ctx, repo, row, &matched)
	})
	if err != nil {
		recordSubmission(outcomeFor(err))
		return nil, err
	}

	recordSubmission("created")
	if matched {
		recordMatch()
	}
	return row, nil
}

// computeMatch looks up the reciprocal rating and, when present, marks both
// rows as a match. The side that rated first keeps first-message rights; the
// completing side does not. Both row updates ride the caller's transaction.
func (s *service) computeMatch(ctx context.Context, repo Repository, row *Attraction, matched *bool) error {
	reciprocal, err := repo.Get(ctx, row.UserTo, row.UserFrom, string(row.Day))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			// One-sided rating; no match yet.
			return nil
		}
		return err
	}

	if err := repo.SetMatchResult(ctx, reciprocal.ID, true, true); err != nil {
		return err
	}
	if err := repo.SetMatchResult(ctx, row.ID, true, false); err != nil {
		return err
	}

	matchTrue, rightsFalse := true, false
	row.Result = &matchTrue
	row.FirstMessageRights = &rightsFalse
	*matched = true
	return nil
}

func (s *service) GetAttraction(ctx context.Context, requesterID, userFrom, userTo int64, day string) (*Attraction, error) {
	if requesterID != userFrom && requesterID != userTo {
		return nil, apperr.Forbidden("Forbidden")
	}
	return s.repo.Get(ctx, userFrom, userTo, day)
}

func (s *service) GetAttractionsByPair(ctx context.Context, requesterID, userFrom, userTo int64) ([]*Attraction, error) {
	if requesterID != userFrom && requesterID != userTo {
		return nil, apperr.Forbidden("Forbidden")
	}
	return s.repo.ListByPair(ctx, userFrom, userTo)
}

func outcomeFor(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInsufficientFunds:
		return "insufficient_tokens"
	case apperr.KindAlreadyExists:
		return "duplicate"
	case apperr.KindInvalidRequest:
		return "invalid"
	default:
		return "error"
	}
}
