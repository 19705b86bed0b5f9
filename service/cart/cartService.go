package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"
	cartrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/cart"
	itemrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/item"
	"github.com/Aashutosh1201/rentall-web-sub000/service/availability"
	"github.com/Aashutosh1201/rentall-web-sub000/util/metrics"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidDateRange ErrCode = "INVALID_DATE_RANGE"
	ErrDuplicateItem    ErrCode = "DUPLICATE_ITEM"
	ErrItemNotFound     ErrCode = "ITEM_NOT_FOUND"
	ErrConflict         ErrCode = "RENTAL_CONFLICT"
	ErrCartEmpty        ErrCode = "CART_EMPTY"
	ErrNotFound         ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// ItemConflict pairs a cart line with the reservation blocking it.
type ItemConflict struct {
	ItemID   int64                 `json:"item_id"`
	Conflict availability.Conflict `json:"conflict"`
}

// ConflictError aborts an operation with the full per-item conflict
// list so the renter can fix the cart in one pass.
type ConflictError struct {
	Items []ItemConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d cart item(s) conflict with existing reservations", len(e.Items))
}
func (e *ConflictError) Code() ErrCode { return ErrConflict }

// dto

type AddInput struct {
	ItemID    int64
	Quantity  int
	StartDate time.Time
	EndDate   time.Time
}

type UpdateInput struct {
	Quantity  *int
	StartDate *time.Time
	EndDate   *time.Time
}

// Checkout is the validated payload handed to the checkout
// orchestrator: every line re-checked against the ledger.
type Checkout struct {
	Lines []model.IntentLine
	Total int64
}

type Service interface {
	// Add stages a prospective reservation. Staging is advisory and
	// does not consult availability; only duplicates and inverted
	// ranges are rejected here.
	Add(ctx context.Context, renterID int64, in AddInput) (*model.Cart, error)

	// Update patches a line and recomputes its total. A date change
	// triggers a conflict check against the ledger.
	Update(ctx context.Context, renterID, itemID int64, in UpdateInput) (*model.Cart, error)

	Remove(ctx context.Context, renterID, itemID int64) (*model.Cart, error)
	Get(ctx context.Context, renterID int64) (*model.Cart, error)
	Clear(ctx context.Context, renterID int64) error

	// PrepareCheckout re-validates every line (carts go stale between
	// staging and purchase) and aborts with the per-item conflict list
	// if any line fails.
	PrepareCheckout(ctx context.Context, renterID int64) (*Checkout, error)
}

type service struct {
	carts cartrepo.Repo
	items itemrepo.Repo
	avail availability.Service
}

func New(carts cartrepo.Repo, items itemrepo.Repo, avail availability.Service) Service {
	return &service{carts: carts, items: items, avail: avail}
}

func (s *service) Add(ctx context.Context, renterID int64, in AddInput) (*model.Cart, error) {
	start, end := model.DateOnly(in.StartDate), model.DateOnly(in.EndDate)
	if !start.Before(end) {
		return nil, makeErr(ErrInvalidDateRange)
	}
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	item, err := s.items.Get(ctx, in.ItemID)
	if err != nil {
		if errors.Is(err, itemrepo.ErrNotFound) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}

	days := model.RentalDaysBetween(start, end)
	line := &model.CartItem{
		RenterID:    renterID,
		ItemID:      item.ID,
		Quantity:    qty,
		StartDate:   start,
		EndDate:     end,
		RentalDays:  days,
		PricePerDay: item.PricePerDay,
		DeliveryFee: item.DeliveryFee,
		ReturnFee:   item.ReturnFee,
		Total:       model.LineTotal(item.PricePerDay, days, qty, item.DeliveryFee, item.ReturnFee),
	}

	if _, err := s.carts.Insert(ctx, line); err != nil {
		if errors.Is(err, cartrepo.ErrDuplicate) {
			return nil, makeErr(ErrDuplicateItem)
		}
		return nil, err
	}
	return s.Get(ctx, renterID)
}

func (s *service) Update(ctx context.Context, renterID, itemID int64, in UpdateInput) (*model.Cart, error) {
	line, err := s.carts.Get(ctx, renterID, itemID)
	if err != nil {
		if errors.Is(err, cartrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	datesChanged := false
	if in.StartDate != nil {
		d := model.DateOnly(*in.StartDate)
		if !d.Equal(line.StartDate) {
			line.StartDate = d
			datesChanged = true
		}
	}
	if in.EndDate != nil {
		d := model.DateOnly(*in.EndDate)
		if !d.Equal(line.EndDate) {
			line.EndDate = d
			datesChanged = true
		}
	}
	if !line.StartDate.Before(line.EndDate) {
		return nil, makeErr(ErrInvalidDateRange)
	}
	if in.Quantity != nil && *in.Quantity >= 1 {
		line.Quantity = *in.Quantity
	}

	if datesChanged {
		conflict, err := s.avail.CheckConflict(ctx, itemID, line.StartDate, line.EndDate, 0)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			metrics.CartConflicts.Inc()
			return nil, &ConflictError{Items: []ItemConflict{{ItemID: itemID, Conflict: *conflict}}}
		}
	}

	line.RentalDays = model.RentalDaysBetween(line.StartDate, line.EndDate)
	line.Total = model.LineTotal(line.PricePerDay, line.RentalDays, line.Quantity, line.DeliveryFee, line.ReturnFee)

	if err := s.carts.Update(ctx, line); err != nil {
		return nil, err
	}
	return s.Get(ctx, renterID)
}

func (s *service) Remove(ctx context.Context, renterID, itemID int64) (*model.Cart, error) {
	if err := s.carts.Delete(ctx, renterID, itemID); err != nil {
		if errors.Is(err, cartrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return s.Get(ctx, renterID)
}

func (s *service) Get(ctx context.Context, renterID int64) (*model.Cart, error) {
	items, err := s.carts.ListByRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}
	return model.NewCart(renterID, items), nil
}

func (s *service) Clear(ctx context.Context, renterID int64) error {
	return s.carts.Clear(ctx, renterID)
}

func (s *service) PrepareCheckout(ctx context.Context, renterID int64) (*Checkout, error) {
	items, err := s.carts.ListByRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, makeErr(ErrCartEmpty)
	}

	var conflicts []ItemConflict
	out := &Checkout{}
	for _, it := range items {
		conflict, err := s.avail.CheckConflict(ctx, it.ItemID, it.StartDate, it.EndDate, 0)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			conflicts = append(conflicts, ItemConflict{ItemID: it.ItemID, Conflict: *conflict})
			continue
		}
		out.Lines = append(out.Lines, model.IntentLine{
			ItemID:      it.ItemID,
			StartDate:   it.StartDate,
			EndDate:     it.EndDate,
			Quantity:    it.Quantity,
			PricePerDay: it.PricePerDay,
			DeliveryFee: it.DeliveryFee,
			ReturnFee:   it.ReturnFee,
			Total:       it.Total,
		})
		out.Total += it.Total
	}
	if len(conflicts) > 0 {
		metrics.CartConflicts.Inc()
		return nil, &ConflictError{Items: conflicts}
	}
	return out, nil
}
