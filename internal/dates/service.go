// internal/dates/service.go

package dates

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
	"github.com/daymatch/daymatch-backend/internal/common/database"
	"github.com/daymatch/daymatch-backend/internal/users"
)

type Service interface {
	Propose(ctx context.Context, proposerID int64, dto *ProposeDateDTO) (*DateRecord, error)
	Update(ctx context.Context, callerID int64, dto *UpdateDateDTO) (*DateRecord, error)
	Cancel(ctx context.Context, callerID int64, dto *CancelDateDTO) (*DateRecord, error)
	Get(ctx context.Context, requesterID, userFrom, userTo int64, day string) (*DateRecord, error)
	GetUpcoming(ctx context.Context, userID int64) ([]*DateRecord, error)
}

type service struct {
	repo      Repository
	directory users.Directory
	txRunner  database.TxRunner
}

func NewService(repo Repository, directory users.Directory, txRunner database.TxRunner) Service {
	return &service{repo: repo, directory: directory, txRunner: txRunner}
}

// Propose creates a new date record for the unordered pair and day. At most
// one record exists per pair and day, ever; a cancelled record still blocks
// re-proposal.
func (s *service) Propose(ctx context.Context, proposerID int64, dto *ProposeDateDTO) (*DateRecord, error) {
	if proposerID == dto.UserTo {
		return nil, apperr.InvalidRequest("userFrom and userTo must be different users")
	}

	exists, err := s.directory.Exists(ctx, dto.UserTo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user not found")
	}

	if _, err := s.repo.GetByPairAndDay(ctx, proposerID, dto.UserTo, dto.Date); err == nil {
		return nil, apperr.AlreadyExists("Date already exists")
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	record := &DateRecord{
		UserFrom:         proposerID,
		UserTo:           dto.UserTo,
		Day:              database.Date(dto.Date),
		Time:             dto.Time,
		LocationMetadata: dto.LocationMetadata,
	}
	record.Recompute()

	// The unique index on the pair and day closes the check-then-create race.
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update applies partial field changes and recomputes the status from the
// post-write approval flags. The row is locked for the duration of the
// transaction so two participants approving at once cannot lose an update.
func (s *service) Update(ctx context.Context, callerID int64, dto *UpdateDateDTO) (*DateRecord, error) {
	var record *DateRecord

	err := s.txRunner.Run(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		d, err := repo.GetByPairAndDayForUpdate(ctx, callerID, dto.UserTo, dto.Date)
		if err != nil {
			return err
		}

		if d.Status == StatusCancelled {
			return apperr.InvalidOperation("Cannot update a cancelled date")
		}

		if dto.Time != nil {
			d.Time = dto.Time
		}
		if len(dto.LocationMetadata) > 0 {
			d.LocationMetadata = dto.LocationMetadata
		}
		if dto.UserFromApproved != nil {
			d.UserFromApproved = *dto.UserFromApproved
		}
		if dto.UserToApproved != nil {
			d.UserToApproved = *dto.UserToApproved
		}

		d.Recompute()

		if err := repo.Update(ctx, d); err != nil {
			return err
		}

		record = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Cancel moves the record to the terminal cancelled state. Either
// participant may cancel; approvals are irrelevant once cancelled.
func (s *service) Cancel(ctx context.Context, callerID int64, dto *CancelDateDTO) (*DateRecord, error) {
	var record *DateRecord

	err := s.txRunner.Run(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		d, err := repo.GetByPairAndDayForUpdate(ctx, callerID, dto.UserTo, dto.Date)
		if err != nil {
			return err
		}

		if d.Status == StatusCancelled {
			return apperr.InvalidOperation("Date is already cancelled")
		}

		d.Status = StatusCancelled

		if err := repo.Update(ctx, d); err != nil {
			return err
		}

		record = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (s *service) Get(ctx context.Context, requesterID, userFrom, userTo int64, day string) (*DateRecord, error) {
	if requesterID != userFrom && requesterID != userTo {
		return nil, apperr.Forbidden("Forbidden")
	}
	return s.repo.GetByPairAndDay(ctx, userFrom, userTo, day)
}

func (s *service) GetUpcoming(ctx context.Context, userID int64) ([]*DateRecord, error) {
	return s.repo.ListUpcoming(ctx, userID)
}
