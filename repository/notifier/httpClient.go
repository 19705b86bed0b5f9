// repository/notifier/repo.go
package notifierrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/util/httpx"
)

// Event is what the notification collaborator receives after a
// reservation status transition. Delivery is fire-and-forget: no retry,
// no acknowledgment handling on this side.
type Event struct {
	ReservationID int64     `json:"reservation_id"`
	RenterID      int64     `json:"renter_id"`
	ItemID        int64     `json:"item_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Repo interface {
	Notify(ctx context.Context, ev Event) error
}

type httpRepo struct {
	url    string
	client *http.Client
}

func NewHTTP(url string) Repo {
	return &httpRepo{url: url, client: httpx.Client()}
}

func (r *httpRepo) Notify(ctx context.Context, ev Event) error {
	if r.url == "" {
		return nil
	}
	b, _ := json.Marshal(ev)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notifier responded %s", resp.Status)
	}
	return nil
}
