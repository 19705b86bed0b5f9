package reservation_test

import (
	"context"
	"testing"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"
	notifierrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/notifier"
	reservationsvc "github.com/Aashutosh1201/rentall-web-sub000/service/reservation"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { t.rolledBack = true; return nil }

type txBeginnerMock struct{ tx *fakeTx }

func (m *txBeginnerMock) Begin(ctx context.Context) (pgx.Tx, error) { return m.tx, nil }

type ledgerMock struct {
	getByIDFn      func(ctx context.Context, id int64) (*model.Reservation, error)
	getForUpdateFn func(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error)
	updateStatusFn func(ctx context.Context, tx pgx.Tx, id int64, to model.ReservationStatus, returnedAt *time.Time) error
	listByRenterFn func(ctx context.Context, renterID int64, limit, offset int) ([]model.Reservation, error)
}

func (m *ledgerMock) Create(ctx context.Context, tx pgx.Tx, r *model.Reservation) (int64, error) {
	panic("not used")
}
func (m *ledgerMock) LockItem(ctx context.Context, tx pgx.Tx, itemID int64) error {
	panic("not used")
}
func (m *ledgerMock) FindOverlapping(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
	panic("not used")
}
func (m *ledgerMock) FindOverlappingTx(ctx context.Context, tx pgx.Tx, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
	panic("not used")
}
func (m *ledgerMock) ListByPurchaseOrderID(ctx context.Context, poid string) ([]model.Reservation, error) {
	panic("not used")
}
func (m *ledgerMock) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return m.getByIDFn(ctx, id)
}
func (m *ledgerMock) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error) {
	return m.getForUpdateFn(ctx, tx, id)
}
func (m *ledgerMock) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, to model.ReservationStatus, returnedAt *time.Time) error {
	return m.updateStatusFn(ctx, tx, id, to, returnedAt)
}
func (m *ledgerMock) ListByRenter(ctx context.Context, renterID int64, limit, offset int) ([]model.Reservation, error) {
	return m.listByRenterFn(ctx, renterID, limit, offset)
}

type notifierMock struct{ events chan notifierrepo.Event }

func newNotifierMock() *notifierMock {
	return &notifierMock{events: make(chan notifierrepo.Event, 1)}
}

func (m *notifierMock) Notify(ctx context.Context, ev notifierrepo.Event) error {
	m.events <- ev
	return nil
}

func activeReservation() *model.Reservation {
	return &model.Reservation{
		ID:            11,
		RenterID:      7,
		ItemID:        42,
		StartDate:     time.Now().UTC().AddDate(0, 0, -1),
		EndDate:       time.Now().UTC().AddDate(0, 0, 3),
		Status:        model.ReservationActive,
		PaymentStatus: model.PaymentCompleted,
	}
}

func TestList_DerivedStateAndLimitClamp(t *testing.T) {
	var gotLimit, gotOffset int
	ledger := &ledgerMock{
		listByRenterFn: func(ctx context.Context, renterID int64, limit, offset int) ([]model.Reservation, error) {
			gotLimit, gotOffset = limit, offset
			return []model.Reservation{*activeReservation()}, nil
		},
	}
	s := reservationsvc.New(&txBeginnerMock{}, ledger, newNotifierMock())

	views, err := s.List(context.Background(), 7, 0, -3)
	require.NoError(t, err)
	require.Equal(t, 20, gotLimit, "zero limit falls back to the default page size")
	require.Equal(t, 0, gotOffset)
	require.Len(t, views, 1)
	require.False(t, views[0].IsOverdue)
	require.Positive(t, views[0].DaysRemaining)

	_, err = s.List(context.Background(), 7, 1000, 0)
	require.NoError(t, err)
	require.Equal(t, 100, gotLimit, "limit is capped")
}

func TestGet_NotFound(t *testing.T) {
	ledger := &ledgerMock{
		getByIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) { return nil, nil },
	}
	s := reservationsvc.New(&txBeginnerMock{}, ledger, newNotifierMock())

	_, err := s.Get(context.Background(), 7, 404)
	require.Equal(t, reservationsvc.ErrNotFound, reservationsvc.Code(err))
}

func TestGet_NotOwner(t *testing.T) {
	ledger := &ledgerMock{
		getByIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return activeReservation(), nil
		},
	}
	s := reservationsvc.New(&txBeginnerMock{}, ledger, newNotifierMock())

	_, err := s.Get(context.Background(), 999, 11)
	require.Equal(t, reservationsvc.ErrNotOwner, reservationsvc.Code(err))
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	tx := &fakeTx{}
	returned := activeReservation()
	returned.Status = model.ReservationReturned
	ledger := &ledgerMock{
		getForUpdateFn: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error) {
			return returned, nil
		},
	}
	s := reservationsvc.New(&txBeginnerMock{tx: tx}, ledger, newNotifierMock())

	_, err := s.UpdateStatus(context.Background(), 7, 11, model.ReservationActive)
	require.Equal(t, reservationsvc.ErrIllegalTransition, reservationsvc.Code(err))
	require.True(t, tx.rolledBack)
	require.False(t, tx.committed)
}

func TestUpdateStatus_NotOwnerRollsBack(t *testing.T) {
	tx := &fakeTx{}
	ledger := &ledgerMock{
		getForUpdateFn: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error) {
			return activeReservation(), nil
		},
	}
	s := reservationsvc.New(&txBeginnerMock{tx: tx}, ledger, newNotifierMock())

	_, err := s.UpdateStatus(context.Background(), 999, 11, model.ReservationReturned)
	require.Equal(t, reservationsvc.ErrNotOwner, reservationsvc.Code(err))
	require.True(t, tx.rolledBack)
}

func TestUpdateStatus_ReturnedStampsReturnedAtAndNotifies(t *testing.T) {
	tx := &fakeTx{}
	var stamped *time.Time
	ledger := &ledgerMock{
		getForUpdateFn: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error) {
			return activeReservation(), nil
		},
		updateStatusFn: func(ctx context.Context, tx pgx.Tx, id int64, to model.ReservationStatus, returnedAt *time.Time) error {
			stamped = returnedAt
			return nil
		},
	}
	notifier := newNotifierMock()
	s := reservationsvc.New(&txBeginnerMock{tx: tx}, ledger, notifier)

	view, err := s.UpdateStatus(context.Background(), 7, 11, model.ReservationReturned)
	require.NoError(t, err)
	require.True(t, tx.committed)
	require.NotNil(t, stamped)
	require.Equal(t, model.ReservationReturned, view.Status)
	require.NotNil(t, view.ReturnedAt)

	select {
	case ev := <-notifier.events:
		require.Equal(t, int64(11), ev.ReservationID)
		require.Equal(t, string(model.ReservationReturned), ev.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("status notification never sent")
	}
}

func TestUpdateStatus_CancelNeedsNoReturnedAt(t *testing.T) {
	tx := &fakeTx{}
	var stamped *time.Time
	ledger := &ledgerMock{
		getForUpdateFn: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error) {
			pending := activeReservation()
			pending.Status = model.ReservationPending
			return pending, nil
		},
		updateStatusFn: func(ctx context.Context, tx pgx.Tx, id int64, to model.ReservationStatus, returnedAt *time.Time) error {
			stamped = returnedAt
			return nil
		},
	}
	notifier := newNotifierMock()
	s := reservationsvc.New(&txBeginnerMock{tx: tx}, ledger, notifier)

	view, err := s.UpdateStatus(context.Background(), 7, 11, model.ReservationCancelled)
	require.NoError(t, err)
	require.Nil(t, stamped)
	require.Equal(t, model.ReservationCancelled, view.Status)
	<-notifier.events
}
