package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"
	gatewayrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/gateway"
	ledgerrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/ledger"
	"github.com/Aashutosh1201/rentall-web-sub000/repository/lockstore"
	"github.com/Aashutosh1201/rentall-web-sub000/service/availability"
	"github.com/Aashutosh1201/rentall-web-sub000/util/metrics"

	"github.com/jackc/pgx/v5"
)

// errors used by controllers

type ErrCode string

const (
	ErrGatewayUnavailable   ErrCode = "GATEWAY_UNAVAILABLE"
	ErrPaymentPending       ErrCode = "PAYMENT_PENDING"
	ErrPaymentNotCompleted  ErrCode = "PAYMENT_NOT_COMPLETED"
	ErrConflictAfterPayment ErrCode = "CONFLICT_AFTER_PAYMENT"
	ErrAmountMismatch       ErrCode = "AMOUNT_MISMATCH"
	ErrBadIntent            ErrCode = "BAD_INTENT_PAYLOAD"
	ErrInProgress           ErrCode = "RECONCILE_IN_PROGRESS"
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

// ConflictAfterPaymentError means the payment completed but the range
// was taken in the meantime. No reservation is written; the renter must
// be compensated through an external process.
type ConflictAfterPaymentError struct {
	ItemID   int64
	Conflict availability.Conflict
}

func (e *ConflictAfterPaymentError) Error() string {
	return fmt.Sprintf("item %d no longer available after payment", e.ItemID)
}
func (e *ConflictAfterPaymentError) Code() ErrCode { return ErrConflictAfterPayment }

// Result reports the ledger rows for a purchase order. Created is false
// on an idempotent replay: the payment was already reconciled.
type Result struct {
	ReservationIDs []int64 `json:"reservation_ids"`
	Created        bool    `json:"created"`
}

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service interface {
	// Reconcile turns a gateway confirmation into exactly one set of
	// ledger rows for the purchase order, no matter how many times the
	// gateway or the renter's browser calls back.
	Reconcile(ctx context.Context, purchaseOrderID string) (*Result, error)
}

type service struct {
	db      TxBeginner
	ledger  ledgerrepo.Repo
	gw      gatewayrepo.Repo
	avail   availability.Service
	locks   lockstore.Store
	lockTTL time.Duration
}

func New(db TxBeginner, ledger ledgerrepo.Repo, gw gatewayrepo.Repo, avail availability.Service, locks lockstore.Store) Service {
	return &service{
		db:      db,
		ledger:  ledger,
		gw:      gw,
		avail:   avail,
		locks:   locks,
		lockTTL: 30 * time.Second,
	}
}

func (s *service) Reconcile(ctx context.Context, poid string) (*Result, error) {
	// Cross-instance mutex per purchase order. Best effort: if redis is
	// down we fall through to the database constraints, which remain
	// the hard guarantee.
	lockKey := "reconcile:" + poid
	acquired, err := s.locks.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		slog.Warn("reconcile lock unavailable, relying on db constraints", "err", err)
		acquired = true
	} else if acquired {
		defer func() {
			if err := s.locks.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				slog.Warn("reconcile lock release failed", "key", lockKey, "err", err)
			}
		}()
	}

	// Step 1: idempotency. A reconciled purchase order is returned
	// unchanged however often we are called.
	if existing, err := s.ledger.ListByPurchaseOrderID(ctx, poid); err != nil {
		return nil, err
	} else if len(existing) > 0 {
		metrics.ReconcileOutcomes.WithLabelValues("replay").Inc()
		return replayResult(existing), nil
	}

	if !acquired {
		// Another instance holds the order and no rows exist yet. The
		// caller re-queries instead of racing it.
		return nil, makeErr(ErrInProgress)
	}

	// Step 2: verify with the gateway. Non-completed states are
	// reported as-is, never retried here.
	info, err := s.gw.LookupByOrderID(ctx, poid)
	if err != nil {
		if errors.Is(err, gatewayrepo.ErrUnavailable) {
			return nil, makeErr(ErrGatewayUnavailable)
		}
		return nil, err
	}
	switch info.Status {
	case gatewayrepo.StatusCompleted:
	case gatewayrepo.StatusPending:
		metrics.ReconcileOutcomes.WithLabelValues("rejected").Inc()
		return nil, makeErr(ErrPaymentPending)
	default:
		metrics.ReconcileOutcomes.WithLabelValues("rejected").Inc()
		return nil, makeErr(ErrPaymentNotCompleted)
	}

	intent, err := model.DecodeIntentPayload(info.IntentPayload)
	if err != nil {
		return nil, makeErr(ErrBadIntent)
	}
	if info.AmountCents != intent.Total {
		return nil, makeErr(ErrAmountMismatch)
	}

	return s.reserve(ctx, poid, info.GatewayTxnRef, intent)
}

// reserve re-checks availability and inserts the ledger rows in one
// transaction. An advisory lock per item closes the check-then-write
// window; the schema's exclusion constraint backs it up.
func (s *service) reserve(ctx context.Context, poid, txnRef string, intent *model.BookingIntent) (_ *Result, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Step 3: time has passed since checkout; the range may be gone.
	for _, ln := range intent.Lines {
		if err = s.ledger.LockItem(ctx, tx, ln.ItemID); err != nil {
			return nil, err
		}
		var conflict *availability.Conflict
		conflict, err = s.avail.CheckConflictTx(ctx, tx, ln.ItemID, ln.StartDate, ln.EndDate, 0)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			metrics.ReconcileOutcomes.WithLabelValues("conflict_aborted").Inc()
			err = &ConflictAfterPaymentError{ItemID: ln.ItemID, Conflict: *conflict}
			return nil, err
		}
	}

	// Step 4: write exactly one reservation per line.
	ids := make([]int64, 0, len(intent.Lines))
	for _, ln := range intent.Lines {
		var id int64
		id, err = s.ledger.Create(ctx, tx, &model.Reservation{
			RenterID:        intent.RenterID,
			ItemID:          ln.ItemID,
			StartDate:       ln.StartDate,
			EndDate:         ln.EndDate,
			RentalDays:      model.RentalDaysBetween(ln.StartDate, ln.EndDate),
			Quantity:        ln.Quantity,
			PricePerDay:     ln.PricePerDay,
			DeliveryFee:     ln.DeliveryFee,
			ReturnFee:       ln.ReturnFee,
			TotalAmount:     ln.Total,
			PurchaseOrderID: poid,
			GatewayTxnRef:   txnRef,
			Status:          model.ReservationActive,
			PaymentStatus:   model.PaymentCompleted,
		})
		if err != nil {
			if ledgerrepo.IsUniqueViolation(err) {
				// A racer reconciled the same purchase order first.
				_ = tx.Rollback(ctx)
				existing, lerr := s.ledger.ListByPurchaseOrderID(ctx, poid)
				if lerr != nil {
					return nil, lerr
				}
				if len(existing) > 0 {
					metrics.ReconcileOutcomes.WithLabelValues("replay").Inc()
					err = nil
					return replayResult(existing), nil
				}
				return nil, err
			}
			if ledgerrepo.IsExclusionViolation(err) {
				// A racer took the range for another purchase order.
				metrics.ReconcileOutcomes.WithLabelValues("conflict_aborted").Inc()
				err = &ConflictAfterPaymentError{ItemID: ln.ItemID, Conflict: availability.Conflict{
					StartDate:     ln.StartDate,
					EndDate:       ln.EndDate,
					AvailableFrom: ln.EndDate.AddDate(0, 0, 1),
				}}
				return nil, err
			}
			return nil, err
		}
		ids = append(ids, id)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	metrics.ReconcileOutcomes.WithLabelValues("reserved").Inc()
	return &Result{ReservationIDs: ids, Created: true}, nil
}

func replayResult(rows []model.Reservation) *Result {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return &Result{ReservationIDs: ids, Created: false}
}
