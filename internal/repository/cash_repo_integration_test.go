//go:build integration

package repository

// Integration tests for the cash repository against real Postgres via
// testcontainers. They exercise the guarantees that only the database can
// give: the partial unique index on open sessions, the row-lock open
// re-check, and the conditional close.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"sync"
	"testing"
	"time"

	"makepri/internal/infra"
	"makepri/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("makepri_test"),
		tcPostgres.WithUsername("makepri"),
		tcPostgres.WithPassword("makepri"),
		testcontainers.WithWaitStrategyAndDeadline(90*time.Second),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	return db
}

func seedOpener(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	u := model.User{Name: "Cashier", Email: uuid.NewString() + "@store.test", PasswordHash: "x", Role: "cashier", Active: true}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func newSession(userID uuid.UUID, drawer int) (*model.CashSession, *model.CashMovement) {
	s := &model.CashSession{
		Drawer:       drawer,
		OpenedBy:     userID,
		OpeningFloat: decimal.RequireFromString("100.00"),
		Status:       model.CashSessionOpen,
		OpenedAt:     time.Now().UTC(),
	}
	opening := &model.CashMovement{
		Type:          model.MovementOpening,
		PaymentMethod: model.PaymentCash,
		Amount:        decimal.RequireFromString("100.00"),
		Description:   "Opening float",
		CreatedBy:     &userID,
	}
	return s, opening
}

func TestCreateSession_PartialIndexBlocksSecondOpen(t *testing.T) {
	db := setupDB(t)
	repo := NewCashRepository(db)
	userID := seedOpener(t, db)
	ctx := context.Background()

	s1, op1 := newSession(userID, 1)
	require.NoError(t, repo.CreateSession(ctx, s1, op1))

	s2, op2 := newSession(userID, 1)
	err := repo.CreateSession(ctx, s2, op2)
	assert.ErrorIs(t, err, model.ErrSessionAlreadyOpen)

	// A different drawer is unaffected.
	s3, op3 := newSession(userID, 2)
	assert.NoError(t, repo.CreateSession(ctx, s3, op3))
}

func TestCreateSession_ConcurrentOpensExactlyOneWins(t *testing.T) {
	db := setupDB(t)
	repo := NewCashRepository(db)
	userID := seedOpener(t, db)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, op := newSession(userID, 7)
			errs[i] = repo.CreateSession(context.Background(), s, op)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, model.ErrSessionAlreadyOpen)
		}
	}
	assert.Equal(t, 1, wins)
}

// closeNow runs the same lock-sum-write sequence the service uses: lock the
// session row, derive the closing fields, conditional UPDATE.
func closeNow(db *gorm.DB, repo CashRepository, sessionID, userID uuid.UUID, counted string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		s, err := repo.LockOpenSessionTx(tx, sessionID)
		if err != nil {
			return err
		}
		c := decimal.RequireFromString(counted)
		d := decimal.Zero
		now := time.Now().UTC()
		s.ExpectedBalance = &c
		s.CountedAmount = &c
		s.Discrepancy = &d
		s.ClosedBy = &userID
		s.ClosedAt = &now
		return repo.CloseSessionTx(tx, s)
	})
}

func TestCloseSession_ConditionalWriteLosesRaceGracefully(t *testing.T) {
	db := setupDB(t)
	repo := NewCashRepository(db)
	userID := seedOpener(t, db)
	ctx := context.Background()

	s, op := newSession(userID, 1)
	require.NoError(t, repo.CreateSession(ctx, s, op))

	require.NoError(t, closeNow(db, repo, s.ID, userID, "100.00"))

	// The row lock catches the second close first.
	assert.ErrorIs(t, closeNow(db, repo, s.ID, userID, "100.00"), model.ErrSessionClosed)

	// The conditional write alone is also a sufficient guard.
	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.CloseSessionTx(tx, s)
	})
	assert.ErrorIs(t, err, model.ErrSessionClosed)
}

func TestClose_SerializesAgainstConcurrentAppend(t *testing.T) {
	db := setupDB(t)
	repo := NewCashRepository(db)
	userID := seedOpener(t, db)
	ctx := context.Background()

	s, op := newSession(userID, 1)
	require.NoError(t, repo.CreateSession(ctx, s, op))

	appendErr := make(chan error, 1)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.LockOpenSessionTx(tx, s.ID)
		require.NoError(t, err)

		// The append starts while the close holds the row lock: it blocks on
		// its own lock acquisition and can only resolve after the commit.
		go func() {
			appendErr <- repo.AppendMovement(ctx, &model.CashMovement{
				SessionID:     s.ID,
				Type:          model.MovementSupply,
				PaymentMethod: model.PaymentCash,
				Amount:        decimal.RequireFromString("10.00"),
				Description:   "late supply",
			})
		}()
		time.Sleep(500 * time.Millisecond)

		sums, err := repo.SumMovementsTx(tx, s.ID)
		require.NoError(t, err)
		total := decimal.Zero
		for _, row := range sums {
			total = total.Add(row.Total)
		}

		now := time.Now().UTC()
		d := decimal.Zero
		locked.ExpectedBalance = &total
		locked.CountedAmount = &total
		locked.Discrepancy = &d
		locked.ClosedBy = &userID
		locked.ClosedAt = &now
		return repo.CloseSessionTx(tx, locked)
	}))

	// The blocked append sees the closed status once the lock is released.
	assert.ErrorIs(t, <-appendErr, model.ErrSessionClosed)

	movs, err := repo.ListMovements(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)

	var closed model.CashSession
	require.NoError(t, db.First(&closed, "id = ?", s.ID).Error)
	require.NotNil(t, closed.ExpectedBalance)
	assert.True(t, closed.ExpectedBalance.Equal(decimal.RequireFromString("100.00")))
}

func TestAppendMovement_RejectedAfterClose(t *testing.T) {
	db := setupDB(t)
	repo := NewCashRepository(db)
	userID := seedOpener(t, db)
	ctx := context.Background()

	s, op := newSession(userID, 1)
	require.NoError(t, repo.CreateSession(ctx, s, op))
	require.NoError(t, closeNow(db, repo, s.ID, userID, "100.00"))

	err := repo.AppendMovement(ctx, &model.CashMovement{
		SessionID:     s.ID,
		Type:          model.MovementSupply,
		PaymentMethod: model.PaymentCash,
		Amount:        decimal.RequireFromString("10.00"),
		Description:   "too late",
	})
	assert.ErrorIs(t, err, model.ErrSessionClosed)

	movs, err := repo.ListMovements(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1) // only the opening movement
}

func TestSumMovements_GroupsByTypeAndMethod(t *testing.T) {
	db := setupDB(t)
	repo := NewCashRepository(db)
	userID := seedOpener(t, db)
	ctx := context.Background()

	s, op := newSession(userID, 1)
	require.NoError(t, repo.CreateSession(ctx, s, op))

	add := func(typ, method, amount string) {
		require.NoError(t, repo.AppendMovement(ctx, &model.CashMovement{
			SessionID:     s.ID,
			Type:          typ,
			PaymentMethod: method,
			Amount:        decimal.RequireFromString(amount),
			Description:   "test movement",
		}))
	}
	add(model.MovementSale, model.PaymentCash, "50.00")
	add(model.MovementSale, model.PaymentCash, "25.00")
	add(model.MovementSale, model.PaymentCredit, "200.00")
	add(model.MovementWithdrawal, model.PaymentCash, "30.00")

	sums, err := repo.SumMovements(ctx, s.ID)
	require.NoError(t, err)

	byKey := make(map[string]decimal.Decimal)
	for _, row := range sums {
		byKey[row.Type+"/"+row.PaymentMethod] = row.Total
	}
	assert.True(t, byKey["sale/cash"].Equal(decimal.RequireFromString("75.00")))
	assert.True(t, byKey["sale/credit"].Equal(decimal.RequireFromString("200.00")))
	assert.True(t, byKey["withdrawal/cash"].Equal(decimal.RequireFromString("30.00")))
	assert.True(t, byKey["opening/cash"].Equal(decimal.RequireFromString("100.00")))
}

func TestListMovements_StableLedgerOrder(t *testing.T) {
	db := setupDB(t)
	repo := NewCashRepository(db)
	userID := seedOpener(t, db)
	ctx := context.Background()

	s, op := newSession(userID, 1)
	require.NoError(t, repo.CreateSession(ctx, s, op))

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AppendMovement(ctx, &model.CashMovement{
			SessionID:     s.ID,
			Type:          model.MovementSupply,
			PaymentMethod: model.PaymentCash,
			Amount:        decimal.RequireFromString("1.00"),
			Description:   "supply",
		}))
	}

	movs, err := repo.ListMovements(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, movs, 6)
	for i := 1; i < len(movs); i++ {
		assert.Greater(t, movs[i].Seq, movs[i-1].Seq)
	}
}
