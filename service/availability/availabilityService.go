package availability

import (
	"context"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"

	"github.com/jackc/pgx/v5"
)

// Conflict describes the reservation blocking a requested range, with a
// hint for the first day the item is free again.
type Conflict struct {
	ReservationID int64     `json:"reservation_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	AvailableFrom time.Time `json:"available_from"`
}

type Repo interface {
	FindOverlapping(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error)
	FindOverlappingTx(ctx context.Context, tx pgx.Tx, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error)
}

// Service is the single source of truth for date-range conflicts. It is
// read-only and is invoked at cart-update time, at checkout time, and
// again inside the reconciliation transaction.
type Service interface {
	CheckConflict(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*Conflict, error)
	CheckConflictTx(ctx context.Context, tx pgx.Tx, itemID int64, start, end time.Time, excludeID int64) (*Conflict, error)
}

type service struct {
	r Repo
}

func New(r Repo) Service { return &service{r: r} }

func (s *service) CheckConflict(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*Conflict, error) {
	res, err := s.r.FindOverlapping(ctx, itemID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	return toConflict(res), nil
}

func (s *service) CheckConflictTx(ctx context.Context, tx pgx.Tx, itemID int64, start, end time.Time, excludeID int64) (*Conflict, error) {
	res, err := s.r.FindOverlappingTx(ctx, tx, itemID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	return toConflict(res), nil
}

func toConflict(res *model.Reservation) *Conflict {
	if res == nil {
		return nil
	}
	return &Conflict{
		ReservationID: res.ID,
		StartDate:     res.StartDate,
		EndDate:       res.EndDate,
		AvailableFrom: res.EndDate.AddDate(0, 0, 1),
	}
}
