package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"
	ledgerrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/ledger"
	notifierrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/notifier"

	"github.com/jackc/pgx/v5"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrNotOwner          ErrCode = "NOT_OWNER"
	ErrIllegalTransition ErrCode = "ILLEGAL_TRANSITION"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// View is a reservation plus its read-time derived state. Overdue is
// never written back to the ledger.
type View struct {
	model.Reservation
	model.Derived
}

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service interface {
	List(ctx context.Context, renterID int64, limit, offset int) ([]View, error)
	Get(ctx context.Context, renterID, id int64) (*View, error)

	// UpdateStatus applies a legal lifecycle transition and notifies
	// the notification collaborator fire-and-forget.
	UpdateStatus(ctx context.Context, renterID, id int64, to model.ReservationStatus) (*View, error)
}

type service struct {
	db       TxBeginner
	ledger   ledgerrepo.Repo
	notifier notifierrepo.Repo
	now      func() time.Time
}

func New(db TxBeginner, ledger ledgerrepo.Repo, notifier notifierrepo.Repo) Service {
	return &service{db: db, ledger: ledger, notifier: notifier, now: time.Now}
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (s *service) List(ctx context.Context, renterID int64, limit, offset int) ([]View, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.ledger.ListByRenter(ctx, renterID, limit, offset)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]View, len(rows))
	for i, r := range rows {
		out[i] = View{Reservation: r, Derived: r.ComputeDerived(now)}
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, renterID, id int64) (*View, error) {
	r, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, makeErr(ErrNotFound)
	}
	if r.RenterID != renterID {
		return nil, makeErr(ErrNotOwner)
	}
	return &View{Reservation: *r, Derived: r.ComputeDerived(s.now().UTC())}, nil
}

func (s *service) UpdateStatus(ctx context.Context, renterID, id int64, to model.ReservationStatus) (_ *View, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	r, err := s.ledger.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, makeErr(ErrNotFound)
	}
	if r.RenterID != renterID {
		return nil, makeErr(ErrNotOwner)
	}
	if !model.CanTransition(r.Status, to) {
		return nil, makeErr(ErrIllegalTransition)
	}

	now := s.now().UTC()
	var returnedAt *time.Time
	if to == model.ReservationReturned {
		returnedAt = &now
	}
	if err = s.ledger.UpdateStatus(ctx, tx, id, to, returnedAt); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.Status = to
	r.UpdatedAt = now
	r.ReturnedAt = returnedAt

	// Fire-and-forget: delivery failures are logged, never retried and
	// never surfaced to the renter.
	ev := notifierrepo.Event{
		ReservationID: r.ID,
		RenterID:      r.RenterID,
		ItemID:        r.ItemID,
		Status:        string(to),
		OccurredAt:    now,
	}
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.notifier.Notify(nctx, ev); err != nil {
			slog.Error("status notification failed", "reservation_id", ev.ReservationID, "err", err)
		}
	}()

	return &View{Reservation: *r, Derived: r.ComputeDerived(now)}, nil
}
