package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/model"
	"github.com/Aashutosh1201/rentall-web-sub000/service/availability"

	"github.com/jackc/pgx/v5"
)

type repoMock struct {
	findFn func(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error)
}

func (m *repoMock) FindOverlapping(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
	return m.findFn(ctx, itemID, start, end, excludeID)
}
func (m *repoMock) FindOverlappingTx(ctx context.Context, tx pgx.Tx, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
	return m.findFn(ctx, itemID, start, end, excludeID)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckConflict_None(t *testing.T) {
	s := availability.New(&repoMock{
		findFn: func(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
			return nil, nil
		},
	})

	c, err := s.CheckConflict(context.Background(), 1, date(2025, time.June, 1), date(2025, time.June, 5), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != nil {
		t.Fatalf("expected no conflict, got %+v", c)
	}
}

func TestCheckConflict_HintIsDayAfterConflictEnd(t *testing.T) {
	// Active reservation holds [Jun 10, Jun 15); a request for
	// [Jun 12, Jun 14) must report the item free from Jun 16.
	held := &model.Reservation{
		ID:        99,
		StartDate: date(2025, time.June, 10),
		EndDate:   date(2025, time.June, 15),
		Status:    model.ReservationActive,
	}
	s := availability.New(&repoMock{
		findFn: func(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
			return held, nil
		},
	})

	c, err := s.CheckConflict(context.Background(), 1, date(2025, time.June, 12), date(2025, time.June, 14), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("expected a conflict")
	}
	if c.ReservationID != 99 {
		t.Errorf("ReservationID = %d, want 99", c.ReservationID)
	}
	if want := date(2025, time.June, 16); !c.AvailableFrom.Equal(want) {
		t.Errorf("AvailableFrom = %v, want %v", c.AvailableFrom, want)
	}
}

func TestCheckConflict_PassesExcludeID(t *testing.T) {
	var gotExclude int64
	s := availability.New(&repoMock{
		findFn: func(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (*model.Reservation, error) {
			gotExclude = excludeID
			return nil, nil
		},
	})

	_, _ = s.CheckConflict(context.Background(), 1, date(2025, time.June, 1), date(2025, time.June, 2), 55)
	if gotExclude != 55 {
		t.Errorf("excludeID = %d, want 55", gotExclude)
	}
}
