package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"
	cartrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/cart"
	itemrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/item"
	"github.com/Aashutosh1201/rentall-web-sub000/service/availability"
	cartsvc "github.com/Aashutosh1201/rentall-web-sub000/service/cart"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type cartRepoMock struct {
	insertFn func(ctx context.Context, it *model.CartItem) (int64, error)
	updateFn func(ctx context.Context, it *model.CartItem) error
	getFn    func(ctx context.Context, renterID, itemID int64) (*model.CartItem, error)
	listFn   func(ctx context.Context, renterID int64) ([]model.CartItem, error)
	deleteFn func(ctx context.Context, renterID, itemID int64) error
	clearFn  func(ctx context.Context, renterID int64) error
}

func (m *cartRepoMock) Insert(ctx context.Context, it *model.CartItem) (int64, error) {
	return m.insertFn(ctx, it)
}
func (m *cartRepoMock) Update(ctx context.Context, it *model.CartItem) error {
	return m.updateFn(ctx, it)
}
func (m *cartRepoMock) Get(ctx context.Context, renterID, itemID int64) (*model.CartItem, error) {
	return m.getFn(ctx, renterID, itemID)
}
func (m *cartRepoMock) ListByRenter(ctx context.Context, renterID int64) ([]model.CartItem, error) {
	return m.listFn(ctx, renterID)
}
func (m *cartRepoMock) Delete(ctx context.Context, renterID, itemID int64) error {
	return m.deleteFn(ctx, renterID, itemID)
}
func (m *cartRepoMock) Clear(ctx context.Context, renterID int64) error {
	return m.clearFn(ctx, renterID)
}

type itemRepoMock struct {
	getFn func(ctx context.Context, id int64) (*model.Item, error)
}

func (m *itemRepoMock) Get(ctx context.Context, id int64) (*model.Item, error) {
	return m.getFn(ctx, id)
}

type availMock struct {
	checkFn func(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*availability.Conflict, error)
}

func (m *availMock) CheckConflict(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*availability.Conflict, error) {
	return m.checkFn(ctx, itemID, start, end, excludeID)
}
func (m *availMock) CheckConflictTx(ctx context.Context, tx pgx.Tx, itemID int64, start, end time.Time, excludeID int64) (*availability.Conflict, error) {
	return m.checkFn(ctx, itemID, start, end, excludeID)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func noConflict() *availMock {
	return &availMock{checkFn: func(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*availability.Conflict, error) {
		return nil, nil
	}}
}

func kayakItem() *itemRepoMock {
	return &itemRepoMock{getFn: func(ctx context.Context, id int64) (*model.Item, error) {
		return &model.Item{ID: id, Name: "Kayak", PricePerDay: 100, DeliveryFee: 0, ReturnFee: 100, Active: true}, nil
	}}
}

func TestAdd_InvalidDateRange(t *testing.T) {
	s := cartsvc.New(&cartRepoMock{}, kayakItem(), noConflict())

	_, err := s.Add(context.Background(), 1, cartsvc.AddInput{
		ItemID:    5,
		StartDate: date(2025, time.June, 15),
		EndDate:   date(2025, time.June, 10),
	})
	if cartsvc.Code(err) != cartsvc.ErrInvalidDateRange {
		t.Fatalf("got %v, want INVALID_DATE_RANGE", err)
	}
}

func TestAdd_DuplicateItemRejected(t *testing.T) {
	repo := &cartRepoMock{
		insertFn: func(ctx context.Context, it *model.CartItem) (int64, error) {
			return 0, cartrepo.ErrDuplicate
		},
	}
	s := cartsvc.New(repo, kayakItem(), noConflict())

	_, err := s.Add(context.Background(), 1, cartsvc.AddInput{
		ItemID:    5,
		StartDate: date(2025, time.June, 10),
		EndDate:   date(2025, time.June, 12),
	})
	if cartsvc.Code(err) != cartsvc.ErrDuplicateItem {
		t.Fatalf("got %v, want DUPLICATE_ITEM", err)
	}
}

func TestAdd_ComputesLineTotal(t *testing.T) {
	var inserted *model.CartItem
	repo := &cartRepoMock{
		insertFn: func(ctx context.Context, it *model.CartItem) (int64, error) {
			inserted = it
			return 1, nil
		},
		listFn: func(ctx context.Context, renterID int64) ([]model.CartItem, error) {
			return []model.CartItem{*inserted}, nil
		},
	}
	s := cartsvc.New(repo, kayakItem(), noConflict())

	cart, err := s.Add(context.Background(), 1, cartsvc.AddInput{
		ItemID:    5,
		StartDate: date(2025, time.June, 10),
		EndDate:   date(2025, time.June, 13),
	})
	require.NoError(t, err)
	require.NotNil(t, inserted)
	// 100/day * 3 days + 100 return fee
	require.Equal(t, int64(400), inserted.Total)
	require.Equal(t, 3, inserted.RentalDays)
	require.Equal(t, int64(400), cart.Total)
}

func TestAdd_ItemNotFound(t *testing.T) {
	items := &itemRepoMock{getFn: func(ctx context.Context, id int64) (*model.Item, error) {
		return nil, itemrepo.ErrNotFound
	}}
	s := cartsvc.New(&cartRepoMock{}, items, noConflict())

	_, err := s.Add(context.Background(), 1, cartsvc.AddInput{
		ItemID:    404,
		StartDate: date(2025, time.June, 10),
		EndDate:   date(2025, time.June, 12),
	})
	if cartsvc.Code(err) != cartsvc.ErrItemNotFound {
		t.Fatalf("got %v, want ITEM_NOT_FOUND", err)
	}
}

func existingLine() *model.CartItem {
	return &model.CartItem{
		ID: 1, RenterID: 1, ItemID: 5, Quantity: 1,
		StartDate: date(2025, time.June, 10), EndDate: date(2025, time.June, 13),
		RentalDays: 3, PricePerDay: 100, ReturnFee: 100, Total: 400,
	}
}

func TestUpdate_DateChangeChecksAvailability(t *testing.T) {
	repo := &cartRepoMock{
		getFn: func(ctx context.Context, renterID, itemID int64) (*model.CartItem, error) {
			return existingLine(), nil
		},
	}
	avail := &availMock{checkFn: func(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*availability.Conflict, error) {
		return &availability.Conflict{
			ReservationID: 9,
			StartDate:     date(2025, time.June, 10),
			EndDate:       date(2025, time.June, 15),
			AvailableFrom: date(2025, time.June, 16),
		}, nil
	}}
	s := cartsvc.New(repo, kayakItem(), avail)

	newEnd := date(2025, time.June, 14)
	_, err := s.Update(context.Background(), 1, 5, cartsvc.UpdateInput{EndDate: &newEnd})

	var ce *cartsvc.ConflictError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, cartsvc.ErrConflict, cartsvc.Code(err))
	require.Len(t, ce.Items, 1)
	require.Equal(t, date(2025, time.June, 16), ce.Items[0].Conflict.AvailableFrom)
}

func TestUpdate_RecomputesTotal(t *testing.T) {
	var updated *model.CartItem
	repo := &cartRepoMock{
		getFn: func(ctx context.Context, renterID, itemID int64) (*model.CartItem, error) {
			return existingLine(), nil
		},
		updateFn: func(ctx context.Context, it *model.CartItem) error {
			updated = it
			return nil
		},
		listFn: func(ctx context.Context, renterID int64) ([]model.CartItem, error) {
			return []model.CartItem{*updated}, nil
		},
	}
	s := cartsvc.New(repo, kayakItem(), noConflict())

	newEnd := date(2025, time.June, 14) // 3 -> 4 days
	_, err := s.Update(context.Background(), 1, 5, cartsvc.UpdateInput{EndDate: &newEnd})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, 4, updated.RentalDays)
	require.Equal(t, int64(500), updated.Total)
}

func TestPrepareCheckout_EmptyCart(t *testing.T) {
	repo := &cartRepoMock{
		listFn: func(ctx context.Context, renterID int64) ([]model.CartItem, error) { return nil, nil },
	}
	s := cartsvc.New(repo, kayakItem(), noConflict())

	_, err := s.PrepareCheckout(context.Background(), 1)
	if cartsvc.Code(err) != cartsvc.ErrCartEmpty {
		t.Fatalf("got %v, want CART_EMPTY", err)
	}
}

func TestPrepareCheckout_AbortsWithConflictList(t *testing.T) {
	lines := []model.CartItem{*existingLine()}
	second := *existingLine()
	second.ItemID = 6
	lines = append(lines, second)

	repo := &cartRepoMock{
		listFn: func(ctx context.Context, renterID int64) ([]model.CartItem, error) { return lines, nil },
	}
	// only item 6 conflicts; the whole checkout still aborts
	avail := &availMock{checkFn: func(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*availability.Conflict, error) {
		if itemID == 6 {
			return &availability.Conflict{ReservationID: 3, AvailableFrom: date(2025, time.June, 16)}, nil
		}
		return nil, nil
	}}
	s := cartsvc.New(repo, kayakItem(), avail)

	_, err := s.PrepareCheckout(context.Background(), 1)
	var ce *cartsvc.ConflictError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Items, 1)
	require.Equal(t, int64(6), ce.Items[0].ItemID)
}

func TestPrepareCheckout_BuildsLines(t *testing.T) {
	repo := &cartRepoMock{
		listFn: func(ctx context.Context, renterID int64) ([]model.CartItem, error) {
			return []model.CartItem{*existingLine()}, nil
		},
	}
	s := cartsvc.New(repo, kayakItem(), noConflict())

	out, err := s.PrepareCheckout(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	require.Equal(t, int64(400), out.Total)
	require.Equal(t, int64(5), out.Lines[0].ItemID)
}
