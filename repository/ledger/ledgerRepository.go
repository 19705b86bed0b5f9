// repository/ledger/repo.go
package ledgerrepo

import (
	"context"
	"errors"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("reservation not found")

// participatingStatuses is the SQL predicate for reservations that hold
// a date range: active, or pending with a completed payment. Cancelled,
// returned and failed-payment rows never block availability.
const participating = `(status = 'active' OR (status = 'pending' AND payment_status = 'completed'))`

const reservationCols = `
	id, renter_id, item_id, start_date, end_date, rental_days, quantity,
	price_per_day_cents, delivery_fee_cents, return_fee_cents, total_cents,
	purchase_order_id, gateway_txn_ref, status, payment_status,
	created_at, updated_at, returned_at`

type Repo interface {
	// Create inserts a reservation inside the caller's transaction. The
	// schema enforces UNIQUE(purchase_order_id, item_id) and a gist
	// exclusion over (item_id, daterange) for participating rows.
	Create(ctx context.Context, tx pgx.Tx, r *model.Reservation) (int64, error)

	// LockItem takes a transaction-scoped advisory lock on the item so
	// the overlap check and the insert run as one critical section.
	LockItem(ctx context.Context, tx pgx.Tx, itemID int64) error

	FindOverlapping(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error)
	FindOverlappingTx(ctx context.Context, tx pgx.Tx, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error)

	ListByPurchaseOrderID(ctx context.Context, poid string) ([]model.Reservation, error)
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, to model.ReservationStatus, returnedAt *time.Time) error
	ListByRenter(ctx context.Context, renterID int64, limit, offset int) ([]model.Reservation, error)
}

type repo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, tx pgx.Tx, res *model.Reservation) (int64, error) {
	const q = `
		INSERT INTO reservations
			(renter_id, item_id, start_date, end_date, rental_days, quantity,
			 price_per_day_cents, delivery_fee_cents, return_fee_cents, total_cents,
			 purchase_order_id, gateway_txn_ref, status, payment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id`
	var id int64
	err := tx.QueryRow(ctx, q,
		res.RenterID, res.ItemID, res.StartDate, res.EndDate, res.RentalDays, res.Quantity,
		res.PricePerDay, res.DeliveryFee, res.ReturnFee, res.TotalAmount,
		res.PurchaseOrderID, res.GatewayTxnRef, res.Status, res.PaymentStatus,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) LockItem(ctx context.Context, tx pgx.Tx, itemID int64) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, itemID)
	return err
}

func (r *repo) FindOverlapping(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
	return scanOne(r.db.QueryRow(ctx, overlapQuery, itemID, start, end, excludeID))
}

func (r *repo) FindOverlappingTx(ctx context.Context, tx pgx.Tx, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
	return scanOne(tx.QueryRow(ctx, overlapQuery, itemID, start, end, excludeID))
}

// Two ranges [s1,e1) and [s2,e2) overlap iff s1 < e2 AND s2 < e1.
const overlapQuery = `
	SELECT ` + reservationCols + `
	FROM reservations
	WHERE item_id = $1
	  AND id <> $4
	  AND ` + participating + `
	  AND start_date < $3
	  AND $2 < end_date
	ORDER BY end_date DESC
	LIMIT 1`

func (r *repo) ListByPurchaseOrderID(ctx context.Context, poid string) ([]model.Reservation, error) {
	const q = `
		SELECT ` + reservationCols + `
		FROM reservations
		WHERE purchase_order_id = $1
		ORDER BY id`
	rows, err := r.db.Query(ctx, q, poid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = $1`
	return scanOne(r.db.QueryRow(ctx, q, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return scanOne(tx.QueryRow(ctx, q, id))
}

func (r *repo) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, to model.ReservationStatus, returnedAt *time.Time) error {
	const q = `
		UPDATE reservations
		SET status = $2,
		    returned_at = COALESCE($3, returned_at),
		    updated_at = NOW()
		WHERE id = $1`
	ct, err := tx.Exec(ctx, q, id, to, returnedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) ListByRenter(ctx context.Context, renterID int64, limit, offset int) ([]model.Reservation, error) {
	const q = `
		SELECT ` + reservationCols + `
		FROM reservations
		WHERE renter_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, q, renterID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

func scanOne(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID, &res.RenterID, &res.ItemID, &res.StartDate, &res.EndDate,
		&res.RentalDays, &res.Quantity, &res.PricePerDay, &res.DeliveryFee,
		&res.ReturnFee, &res.TotalAmount, &res.PurchaseOrderID, &res.GatewayTxnRef,
		&res.Status, &res.PaymentStatus, &res.CreatedAt, &res.UpdatedAt, &res.ReturnedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func scanAll(rows pgx.Rows) ([]model.Reservation, error) {
	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(
			&res.ID, &res.RenterID, &res.ItemID, &res.StartDate, &res.EndDate,
			&res.RentalDays, &res.Quantity, &res.PricePerDay, &res.DeliveryFee,
			&res.ReturnFee, &res.TotalAmount, &res.PurchaseOrderID, &res.GatewayTxnRef,
			&res.Status, &res.PaymentStatus, &res.CreatedAt, &res.UpdatedAt, &res.ReturnedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// IsUniqueViolation reports whether err is the purchase-order uniqueness
// constraint firing: the payment was already reconciled.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsExclusionViolation reports whether err is the (item, daterange)
// exclusion constraint firing: a concurrent writer won the range.
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation
}
