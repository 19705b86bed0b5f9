package gatewayrepo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Aashutosh1201/rentall-web-sub000/util/httpx"
)

type httpRepo struct {
	baseURL       string
	apiKey        string
	callbackToken string
	client        *http.Client
}

func NewHTTP(baseURL, apiKey, callbackToken string) Repo {
	return &httpRepo{
		baseURL:       baseURL,
		apiKey:        apiKey,
		callbackToken: callbackToken,
		client:        httpx.Client(),
	}
}

func (r *httpRepo) CreateCharge(ctx context.Context, req ChargeReq) (*ChargeResp, error) {
	body := map[string]any{
		"external_id": req.OrderID,
		"amount":      req.AmountCents,
		"description": req.Description,
		"return_url":  req.ReturnURL,
		"metadata":    req.IntentPayload,
	}
	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v2/charges", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway create charge failed: %s", resp.Status)
	}

	var out struct {
		ID         string `json:"id"`
		PaymentURL string `json:"payment_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("gateway: empty transaction ref")
	}

	return &ChargeResp{PaymentURL: out.PaymentURL, GatewayTxnRef: out.ID}, nil
}

func (r *httpRepo) LookupByOrderID(ctx context.Context, orderID string) (*PaymentInfo, error) {
	u := r.baseURL + "/v2/charges?external_id=" + url.QueryEscape(orderID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.apiKey, "")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("gateway: no charge for order %s", orderID)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway lookup failed: %s", resp.Status)
	}

	var out struct {
		ID         string `json:"id"`
		ExternalID string `json:"external_id"`
		Status     string `json:"status"`
		Amount     int64  `json:"amount"`
		Metadata   string `json:"metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	return &PaymentInfo{
		OrderID:       out.ExternalID,
		GatewayTxnRef: out.ID,
		Status:        out.Status,
		AmountCents:   out.Amount,
		IntentPayload: out.Metadata,
	}, nil
}

// VerifyCallbackSignature checks the webhook HMAC against the shared
// callback token. Empty token disables verification (local dev only).
func (r *httpRepo) VerifyCallbackSignature(sigHeader string, rawBody []byte) error {
	if r.callbackToken == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(r.callbackToken))
	mac.Write(rawBody)
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(sigHeader)) {
		return errors.New("callback signature mismatch")
	}
	return nil
}
