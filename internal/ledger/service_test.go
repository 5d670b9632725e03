package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
	"github.com/daymatch/daymatch-backend/internal/ledger"
	"github.com/daymatch/daymatch-backend/internal/users"
)

type memRepository struct {
	entries []*ledger.Entry
}

func (m *memRepository) WithTx(tx *sqlx.Tx) ledger.Repository { return m }

func (m *memRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	for _, e := range m.entries {
		if e.UserID == userID {
			sum += e.TokenAmount
		}
	}
	return sum, nil
}

func (m *memRepository) AppendEntry(ctx context.Context, entry *ledger.Entry) error {
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("entry-%d", len(m.entries)+1)
	}
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memRepository) ListByUser(ctx context.Context, userID int64) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type directoryStub struct {
	ids []int64
}

func (d *directoryStub) Exists(ctx context.Context, userID int64) (bool, error) {
	for _, id := range d.ids {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (d *directoryStub) Get(ctx context.Context, userID int64) (*users.User, error) {
	ok, _ := d.Exists(ctx, userID)
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &users.User{ID: userID}, nil
}

func (d *directoryStub) ListIDs(ctx context.Context) ([]int64, error) {
	return d.ids, nil
}

// passthroughRunner executes fn directly. The in-memory repository has no
// transaction state to manage.
type passthroughRunner struct{}

func (passthroughRunner) RunSerializable(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (passthroughRunner) Run(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func newService(repo ledger.Repository, dir users.Directory) ledger.Service {
	return ledger.NewService(repo, dir, passthroughRunner{}, 100, 100)
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()
	repo := &memRepository{}
	svc := newService(repo, &directoryStub{ids: []int64{1}})

	t.Run("empty ledger is zero", func(t *testing.T) {
		balance, err := svc.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})

	t.Run("balance is the signed sum of entries", func(t *testing.T) {
		for _, amount := range []int64{100, -30, 25} {
			require.NoError(t, repo.AppendEntry(ctx, &ledger.Entry{UserID: 1, TokenAmount: amount}))
		}
		require.NoError(t, repo.AppendEntry(ctx, &ledger.Entry{UserID: 2, TokenAmount: 500}))

		balance, err := svc.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(95), balance)
	})
}

func TestGrantInitialTokens(t *testing.T) {
	ctx := context.Background()
	repo := &memRepository{}
	svc := newService(repo, &directoryStub{ids: []int64{1}})

	entry, err := svc.GrantInitialTokens(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, ledger.TypeReplenishment, entry.TransactionType)
	assert.Equal(t, int64(100), entry.TokenAmount)
	assert.NotEmpty(t, entry.ID)

	balance, _ := svc.GetBalance(ctx, 1)
	assert.Equal(t, int64(100), balance)
}

func TestPurchaseTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("credits the ledger", func(t *testing.T) {
		repo := &memRepository{}
		svc := newService(repo, &directoryStub{ids: []int64{1}})

		usd := 4.99
		entry, err := svc.PurchaseTokens(ctx, 1, 50, &usd, "50 token pack")
		require.NoError(t, err)

		assert.Equal(t, ledger.TypePurchase, entry.TransactionType)
		assert.Equal(t, int64(50), entry.TokenAmount)
		require.NotNil(t, entry.AmountUSD)
		assert.Equal(t, 4.99, *entry.AmountUSD)

		balance, _ := svc.GetBalance(ctx, 1)
		assert.Equal(t, int64(50), balance)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := &memRepository{}
		svc := newService(repo, &directoryStub{ids: []int64{1}})

		for _, amount := range []int64{0, -10} {
			_, err := svc.PurchaseTokens(ctx, 1, amount, nil, "bad")
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindInvalidRequest))
		}
		assert.Empty(t, repo.entries)
	})

	t.Run("rejects unknown users", func(t *testing.T) {
		repo := &memRepository{}
		svc := newService(repo, &directoryStub{ids: []int64{1}})

		_, err := svc.PurchaseTokens(ctx, 99, 50, nil, "pack")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestReplenishMonthly(t *testing.T) {
	ctx := context.Background()

	t.Run("expires leftover balance then grants", func(t *testing.T) {
		repo := &memRepository{}
		svc := newService(repo, &directoryStub{ids: []int64{1}})

		require.NoError(t, repo.AppendEntry(ctx, &ledger.Entry{UserID: 1, TokenAmount: 37}))

		require.NoError(t, svc.ReplenishMonthly(ctx, 1))

		entries, _ := repo.ListByUser(ctx, 1)
		require.Len(t, entries, 3)
		assert.Equal(t, ledger.TypeDebit, entries[1].TransactionType)
		assert.Equal(t, int64(-37), entries[1].TokenAmount)
		assert.Equal(t, ledger.TypeReplenishment, entries[2].TransactionType)
		assert.Equal(t, int64(100), entries[2].TokenAmount)

		balance, _ := svc.GetBalance(ctx, 1)
		assert.Equal(t, int64(100), balance)
	})

	t.Run("skips expiry when balance is zero", func(t *testing.T) {
		repo := &memRepository{}
		svc := newService(repo, &directoryStub{ids: []int64{1}})

		require.NoError(t, svc.ReplenishMonthly(ctx, 1))

		entries, _ := repo.ListByUser(ctx, 1)
		require.Len(t, entries, 1)
		assert.Equal(t, ledger.TypeReplenishment, entries[0].TransactionType)
	})
}

func TestReplenishAll(t *testing.T) {
	ctx := context.Background()
	repo := &memRepository{}
	svc := newService(repo, &directoryStub{ids: []int64{1, 2, 3}})

	summary, err := svc.ReplenishAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Success)
	assert.Equal(t, 0, summary.Failed)

	for _, id := range []int64{1, 2, 3} {
		balance, _ := svc.GetBalance(ctx, id)
		assert.Equal(t, int64(100), balance)
	}
}
