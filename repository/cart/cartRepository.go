// repository/cart/repo.go
package cartrepo

import (
	"context"
	"errors"

	"github.com/Aashutosh1201/rentall-web-sub000/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDuplicate fires on the UNIQUE(renter_id, item_id) constraint:
	// one line per item per cart, duplicates are rejected, not merged.
	ErrDuplicate = errors.New("item already in cart")
	ErrNotFound  = errors.New("cart item not found")
)

const cartCols = `
	id, renter_id, item_id, quantity, start_date, end_date, rental_days,
	price_per_day_cents, delivery_fee_cents, return_fee_cents, total_cents,
	created_at, updated_at`

type Repo interface {
	Insert(ctx context.Context, it *model.CartItem) (int64, error)
	Update(ctx context.Context, it *model.CartItem) error
	Get(ctx context.Context, renterID, itemID int64) (*model.CartItem, error)
	ListByRenter(ctx context.Context, renterID int64) ([]model.CartItem, error)
	Delete(ctx context.Context, renterID, itemID int64) error
	Clear(ctx context.Context, renterID int64) error
}

type repo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, it *model.CartItem) (int64, error) {
	const q = `
		INSERT INTO cart_items
			(renter_id, item_id, quantity, start_date, end_date, rental_days,
			 price_per_day_cents, delivery_fee_cents, return_fee_cents, total_cents)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, q,
		it.RenterID, it.ItemID, it.Quantity, it.StartDate, it.EndDate, it.RentalDays,
		it.PricePerDay, it.DeliveryFee, it.ReturnFee, it.Total,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *repo) Update(ctx context.Context, it *model.CartItem) error {
	const q = `
		UPDATE cart_items
		SET quantity = $3,
		    start_date = $4,
		    end_date = $5,
		    rental_days = $6,
		    total_cents = $7,
		    updated_at = NOW()
		WHERE renter_id = $1 AND item_id = $2`
	ct, err := r.db.Exec(ctx, q,
		it.RenterID, it.ItemID, it.Quantity, it.StartDate, it.EndDate, it.RentalDays, it.Total)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Get(ctx context.Context, renterID, itemID int64) (*model.CartItem, error) {
	const q = `SELECT ` + cartCols + ` FROM cart_items WHERE renter_id = $1 AND item_id = $2`
	var it model.CartItem
	err := r.db.QueryRow(ctx, q, renterID, itemID).Scan(
		&it.ID, &it.RenterID, &it.ItemID, &it.Quantity, &it.StartDate, &it.EndDate,
		&it.RentalDays, &it.PricePerDay, &it.DeliveryFee, &it.ReturnFee, &it.Total,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repo) ListByRenter(ctx context.Context, renterID int64) ([]model.CartItem, error) {
	const q = `SELECT ` + cartCols + ` FROM cart_items WHERE renter_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, q, renterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CartItem
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(
			&it.ID, &it.RenterID, &it.ItemID, &it.Quantity, &it.StartDate, &it.EndDate,
			&it.RentalDays, &it.PricePerDay, &it.DeliveryFee, &it.ReturnFee, &it.Total,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, renterID, itemID int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE renter_id = $1 AND item_id = $2`, renterID, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Clear(ctx context.Context, renterID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE renter_id = $1`, renterID)
	return err
}
