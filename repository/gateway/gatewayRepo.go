// repository/gateway/repo.go
package gatewayrepo

import (
	"context"
	"errors"
)

// Payment status values reported by the gateway.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// ErrUnavailable means the gateway could not be reached at all, as
// opposed to the gateway answering with a failure.
var ErrUnavailable = errors.New("payment gateway unavailable")

type ChargeReq struct {
	OrderID       string
	AmountCents   int64
	Description   string
	ReturnURL     string
	IntentPayload string
}

type ChargeResp struct {
	PaymentURL    string
	GatewayTxnRef string
}

// PaymentInfo is the gateway's view of a charge. IntentPayload is the
// opaque booking intent echoed back unchanged.
type PaymentInfo struct {
	OrderID       string
	GatewayTxnRef string
	Status        string
	AmountCents   int64
	IntentPayload string
}

type Repo interface {
	CreateCharge(ctx context.Context, req ChargeReq) (*ChargeResp, error)

	// LookupByOrderID queries payment state by our purchase-order id,
	// which the gateway stores as the charge's external id.
	LookupByOrderID(ctx context.Context, orderID string) (*PaymentInfo, error)

	VerifyCallbackSignature(sigHeader string, rawBody []byte) error
}
