package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"
	gatewayrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/gateway"
	itemrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/item"
	"github.com/Aashutosh1201/rentall-web-sub000/service/availability"
	"github.com/Aashutosh1201/rentall-web-sub000/service/cart"
	"github.com/Aashutosh1201/rentall-web-sub000/util/metrics"

	"github.com/google/uuid"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidDateRange   ErrCode = "INVALID_DATE_RANGE"
	ErrItemNotFound       ErrCode = "ITEM_NOT_FOUND"
	ErrInvalidAmount      ErrCode = "INVALID_AMOUNT"
	ErrGatewayUnavailable ErrCode = "GATEWAY_UNAVAILABLE"
	ErrGatewayError       ErrCode = "GATEWAY_ERROR"
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

// dto

// DirectBooking is a single item+range checkout that bypasses the cart.
type DirectBooking struct {
	ItemID    int64
	Quantity  int
	StartDate time.Time
	EndDate   time.Time
}

type Input struct {
	FromCart  bool
	Direct    *DirectBooking
	ReturnURL string
}

type Initiated struct {
	PurchaseOrderID string `json:"purchase_order_id"`
	PaymentURL      string `json:"payment_url"`
	GatewayTxnRef   string `json:"gateway_txn_ref"`
	Total           int64  `json:"total_cents"`
}

type Config struct {
	MinChargeCents int64
	ReturnURL      string
}

type Service interface {
	// Initiate converts a validated cart or a direct booking into a
	// payment request. The purchase-order id it mints is the
	// idempotency key for the whole payment round-trip.
	Initiate(ctx context.Context, renterID int64, in Input) (*Initiated, error)
}

type service struct {
	carts      cart.Service
	items      itemrepo.Repo
	avail      availability.Service
	gw         gatewayrepo.Repo
	cfg        Config
	newOrderID func() string
}

func New(carts cart.Service, items itemrepo.Repo, avail availability.Service, gw gatewayrepo.Repo, cfg Config) Service {
	return &service{
		carts:      carts,
		items:      items,
		avail:      avail,
		gw:         gw,
		cfg:        cfg,
		newOrderID: uuid.NewString,
	}
}

func (s *service) Initiate(ctx context.Context, renterID int64, in Input) (*Initiated, error) {
	var (
		lines []model.IntentLine
		total int64
		err   error
	)
	if in.Direct != nil {
		lines, total, err = s.directLines(ctx, *in.Direct)
	} else {
		var prep *cart.Checkout
		prep, err = s.carts.PrepareCheckout(ctx, renterID)
		if prep != nil {
			lines, total = prep.Lines, prep.Total
		}
	}
	if err != nil {
		return nil, err
	}

	// Last availability check before money moves. Carts were validated
	// in PrepareCheckout but can have gone stale in between.
	var conflicts []cart.ItemConflict
	for _, ln := range lines {
		conflict, err := s.avail.CheckConflict(ctx, ln.ItemID, ln.StartDate, ln.EndDate, 0)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			conflicts = append(conflicts, cart.ItemConflict{ItemID: ln.ItemID, Conflict: *conflict})
		}
	}
	if len(conflicts) > 0 {
		return nil, &cart.ConflictError{Items: conflicts}
	}

	if total < s.cfg.MinChargeCents {
		return nil, makeErr(ErrInvalidAmount)
	}

	poid := s.newOrderID()
	intent := model.BookingIntent{RenterID: renterID, Lines: lines, Total: total}
	payload, err := intent.EncodePayload()
	if err != nil {
		return nil, err
	}

	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = s.cfg.ReturnURL
	}

	resp, err := s.gw.CreateCharge(ctx, gatewayrepo.ChargeReq{
		OrderID:       poid,
		AmountCents:   total,
		Description:   fmt.Sprintf("Rental order %s (%d item(s))", poid, len(lines)),
		ReturnURL:     returnURL,
		IntentPayload: payload,
	})
	if err != nil {
		if errors.Is(err, gatewayrepo.ErrUnavailable) {
			return nil, makeErr(ErrGatewayUnavailable)
		}
		return nil, makeErr(ErrGatewayError)
	}

	metrics.CheckoutInitiated.Inc()

	if in.FromCart {
		// Staged lines are consumed by a successful checkout. A failed
		// clear must not fail the checkout that already happened.
		if err := s.carts.Clear(ctx, renterID); err != nil {
			slog.Error("cart clear after checkout failed", "renter_id", renterID, "err", err)
		}
	}

	return &Initiated{
		PurchaseOrderID: poid,
		PaymentURL:      resp.PaymentURL,
		GatewayTxnRef:   resp.GatewayTxnRef,
		Total:           total,
	}, nil
}

func (s *service) directLines(ctx context.Context, d DirectBooking) ([]model.IntentLine, int64, error) {
	start, end := model.DateOnly(d.StartDate), model.DateOnly(d.EndDate)
	if !start.Before(end) {
		return nil, 0, makeErr(ErrInvalidDateRange)
	}
	qty := d.Quantity
	if qty < 1 {
		qty = 1
	}

	item, err := s.items.Get(ctx, d.ItemID)
	if err != nil {
		if errors.Is(err, itemrepo.ErrNotFound) {
			return nil, 0, makeErr(ErrItemNotFound)
		}
		return nil, 0, err
	}

	days := model.RentalDaysBetween(start, end)
	line := model.IntentLine{
		ItemID:      item.ID,
		StartDate:   start,
		EndDate:     end,
		Quantity:    qty,
		PricePerDay: item.PricePerDay,
		DeliveryFee: item.DeliveryFee,
		ReturnFee:   item.ReturnFee,
		Total:       model.LineTotal(item.PricePerDay, days, qty, item.DeliveryFee, item.ReturnFee),
	}
	return []model.IntentLine{line}, line.Total, nil
}
