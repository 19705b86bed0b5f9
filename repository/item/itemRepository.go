// repository/item/repo.go
package itemrepo

import (
	"context"
	"errors"

	"github.com/Aashutosh1201/rentall-web-sub000/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("item not found")

// Repo is the read-only adapter to the item catalog. The catalog is
// owned by another service; this core only needs pricing and existence.
type Repo interface {
	Get(ctx context.Context, id int64) (*model.Item, error)
}

type repo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) Repo { return &repo{db: db} }

func (r *repo) Get(ctx context.Context, id int64) (*model.Item, error) {
	const q = `
		SELECT id, owner_id, name, category,
		       price_per_day_cents, delivery_fee_cents, return_fee_cents, active
		FROM items
		WHERE id = $1 AND active`
	var it model.Item
	err := r.db.QueryRow(ctx, q, id).Scan(
		&it.ID, &it.OwnerID, &it.Name, &it.Category,
		&it.PricePerDay, &it.DeliveryFee, &it.ReturnFee, &it.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}
