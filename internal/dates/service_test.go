package dates_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
	"github.com/daymatch/daymatch-backend/internal/common/database"
	"github.com/daymatch/daymatch-backend/internal/dates"
	"github.com/daymatch/daymatch-backend/internal/users"
)

// memRepository stores date records keyed on unordered pair and day.
type memRepository struct {
	records []*dates.DateRecord
	nextID  int64
}

func samePair(r *dates.DateRecord, userA, userB int64) bool {
	return (r.UserFrom == userA && r.UserTo == userB) || (r.UserFrom == userB && r.UserTo == userA)
}

func (m *memRepository) WithTx(tx *sqlx.Tx) dates.Repository { return m }

func (m *memRepository) Create(ctx context.Context, d *dates.DateRecord) error {
	for _, r := range m.records {
		if samePair(r, d.UserFrom, d.UserTo) && r.Day == d.Day {
			return apperr.AlreadyExists("Date already exists")
		}
	}
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	clone := *d
	m.records = append(m.records, &clone)
	return nil
}

func (m *memRepository) GetByPairAndDay(ctx context.Context, userA, userB int64, day string) (*dates.DateRecord, error) {
	for _, r := range m.records {
		if samePair(r, userA, userB) && r.Day == database.Date(day) {
			clone := *r
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("date not found")
}

func (m *memRepository) GetByPairAndDayForUpdate(ctx context.Context, userA, userB int64, day string) (*dates.DateRecord, error) {
	return m.GetByPairAndDay(ctx, userA, userB, day)
}

func (m *memRepository) Update(ctx context.Context, d *dates.DateRecord) error {
	for i, r := range m.records {
		if r.ID == d.ID {
			d.UpdatedAt = time.Now()
			clone := *d
			m.records[i] = &clone
			return nil
		}
	}
	return apperr.NotFound("date not found")
}

func (m *memRepository) ListUpcoming(ctx context.Context, userID int64) ([]*dates.DateRecord, error) {
	var out []*dates.DateRecord
	for _, r := range m.records {
		if (r.UserFrom == userID || r.UserTo == userID) &&
			r.Status != dates.StatusCancelled && r.Status != dates.StatusCompleted {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

type directoryStub struct {
	ids map[int64]bool
}

func (d *directoryStub) Exists(ctx context.Context, userID int64) (bool, error) {
	return d.ids[userID], nil
}

func (d *directoryStub) Get(ctx context.Context, userID int64) (*users.User, error) {
	if !d.ids[userID] {
		return nil, apperr.NotFound("user not found")
	}
	return &users.User{ID: userID}, nil
}

func (d *directoryStub) ListIDs(ctx context.Context) ([]int64, error) { return nil, nil }

type passthroughRunner struct{}

func (passthroughRunner) RunSerializable(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (passthroughRunner) Run(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func newService() (dates.Service, *memRepository) {
	repo := &memRepository{}
	dir := &directoryStub{ids: map[int64]bool{1: true, 2: true, 3: true}}
	return dates.NewService(repo, dir, passthroughRunner{}), repo
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestProposeDate(t *testing.T) {
	ctx := context.Background()
	day := "2026-09-01"

	t.Run("bare proposal starts unscheduled", func(t *testing.T) {
		svc, _ := newService()

		record, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)
		assert.Equal(t, dates.StatusUnscheduled, record.Status)
	})

	t.Run("proposal with a time starts pending", func(t *testing.T) {
		svc, _ := newService()

		record, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{
			UserTo: 2,
			Date:   day,
			Time:   strPtr("19:00"),
		})
		require.NoError(t, err)
		assert.Equal(t, dates.StatusPending, record.Status)
	})

	t.Run("second proposal for the same pair and day is rejected", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)

		_, err = svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindAlreadyExists))
		assert.Equal(t, "Date already exists", apperr.Message(err))
	})

	t.Run("reverse-direction proposal is the same date", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)

		_, err = svc.Propose(ctx, 2, &dates.ProposeDateDTO{UserTo: 1, Date: day})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindAlreadyExists))
	})

	t.Run("self-date is rejected", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 1, Date: day})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidRequest))
	})

	t.Run("unknown counterpart is rejected", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 99, Date: day})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestUpdateDate(t *testing.T) {
	ctx := context.Background()
	day := "2026-09-01"

	propose := func(t *testing.T, svc dates.Service) {
		t.Helper()
		_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)
	}

	t.Run("one approval moves to pending", func(t *testing.T) {
		svc, _ := newService()
		propose(t, svc)

		record, err := svc.Update(ctx, 1, &dates.UpdateDateDTO{
			UserTo:           2,
			Date:             day,
			UserFromApproved: boolPtr(true),
		})
		require.NoError(t, err)
		assert.Equal(t, dates.StatusPending, record.Status)
	})

	t.Run("both approvals complete the date", func(t *testing.T) {
		svc, _ := newService()
		propose(t, svc)

		_, err := svc.Update(ctx, 1, &dates.UpdateDateDTO{
			UserTo: 2, Date: day, UserFromApproved: boolPtr(true),
		})
		require.NoError(t, err)

		record, err := svc.Update(ctx, 2, &dates.UpdateDateDTO{
			UserTo: 1, Date: day, UserToApproved: boolPtr(true),
		})
		require.NoError(t, err)
		assert.Equal(t, dates.StatusCompleted, record.Status)
	})

	t.Run("withdrawing an approval demotes the status", func(t *testing.T) {
		svc, _ := newService()
		propose(t, svc)

		_, err := svc.Update(ctx, 1, &dates.UpdateDateDTO{
			UserTo: 2, Date: day,
			UserFromApproved: boolPtr(true),
			UserToApproved:   boolPtr(true),
		})
		require.NoError(t, err)

		record, err := svc.Update(ctx, 1, &dates.UpdateDateDTO{
			UserTo: 2, Date: day, UserFromApproved: boolPtr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, dates.StatusPending, record.Status)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		svc, _ := newService()
		propose(t, svc)

		meta := json.RawMessage(`{"venue":"museum"}`)
		_, err := svc.Update(ctx, 1, &dates.UpdateDateDTO{
			UserTo: 2, Date: day, Time: strPtr("18:30"), LocationMetadata: meta,
		})
		require.NoError(t, err)

		record, err := svc.Update(ctx, 2, &dates.UpdateDateDTO{
			UserTo: 1, Date: day, UserToApproved: boolPtr(true),
		})
		require.NoError(t, err)
		require.NotNil(t, record.Time)
		assert.Equal(t, "18:30", *record.Time)
		assert.JSONEq(t, `{"venue":"museum"}`, string(record.LocationMetadata))
		assert.Equal(t, dates.StatusPending, record.Status)
	})

	t.Run("cancelled dates cannot be updated", func(t *testing.T) {
		svc, _ := newService()
		propose(t, svc)

		_, err := svc.Cancel(ctx, 1, &dates.CancelDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)

		_, err = svc.Update(ctx, 1, &dates.UpdateDateDTO{
			UserTo: 2, Date: day, UserFromApproved: boolPtr(true),
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))
		assert.Equal(t, "Cannot update a cancelled date", apperr.Message(err))
	})

	t.Run("updating a missing date is not found", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Update(ctx, 1, &dates.UpdateDateDTO{UserTo: 2, Date: day})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestCancelDate(t *testing.T) {
	ctx := context.Background()
	day := "2026-09-01"

	t.Run("either participant may cancel", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)

		record, err := svc.Cancel(ctx, 2, &dates.CancelDateDTO{UserTo: 1, Date: day})
		require.NoError(t, err)
		assert.Equal(t, dates.StatusCancelled, record.Status)
	})

	t.Run("double cancel is rejected", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, 1, &dates.CancelDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, 1, &dates.CancelDateDTO{UserTo: 2, Date: day})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))
		assert.Equal(t, "Date is already cancelled", apperr.Message(err))
	})

	t.Run("a cancelled date still blocks re-proposal", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, 1, &dates.CancelDateDTO{UserTo: 2, Date: day})
		require.NoError(t, err)

		_, err = svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: day})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindAlreadyExists))
	})
}

func TestGetUpcoming(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 2, Date: "2026-09-01"})
	require.NoError(t, err)
	_, err = svc.Propose(ctx, 1, &dates.ProposeDateDTO{UserTo: 3, Date: "2026-09-02"})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, 1, &dates.CancelDateDTO{UserTo: 3, Date: "2026-09-02"})
	require.NoError(t, err)

	upcoming, err := svc.GetUpcoming(ctx, 1)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, database.Date("2026-09-01"), upcoming[0].Day)

	t.Run("outsider is forbidden on direct reads", func(t *testing.T) {
		_, err := svc.Get(ctx, 3, 1, 2, "2026-09-01")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name         string
		fromApproved bool
		toApproved   bool
		hasSchedule  bool
		want         dates.Status
	}{
		{"nothing set", false, false, false, dates.StatusUnscheduled},
		{"schedule only", false, false, true, dates.StatusPending},
		{"one approval", true, false, false, dates.StatusPending},
		{"other approval", false, true, false, dates.StatusPending},
		{"one approval with schedule", true, false, true, dates.StatusPending},
		{"both approvals", true, true, false, dates.StatusCompleted},
		{"both approvals with schedule", true, true, true, dates.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dates.DeriveStatus(tt.fromApproved, tt.toApproved, tt.hasSchedule))
		})
	}
}

func TestRecomputeSkipsCancelled(t *testing.T) {
	d := &dates.DateRecord{
		Status:           dates.StatusCancelled,
		UserFromApproved: true,
		UserToApproved:   true,
	}
	d.Recompute()
	assert.Equal(t, dates.StatusCancelled, d.Status)
}
