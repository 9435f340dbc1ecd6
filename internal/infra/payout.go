package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// payoutRequest is the JSON body sent to the payout gateway. Amounts are
// expressed in decimal currency units on the wire, not cents.
type payoutRequest struct {
	Account  string          `json:"account"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// payoutResponse is the (minimal) gateway acknowledgement.
type payoutResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// PayoutClient executes withdrawals against an external payout gateway over
// HTTP. It never retries on its own: a failed transfer is reported to the
// caller, whose balance has been restored, so the caller simply withdraws
// again.
type PayoutClient struct {
	url        string
	currency   string
	httpClient *http.Client
}

// NewPayoutClient creates a payout client for the given gateway URL.
func NewPayoutClient(url, currency string, timeout time.Duration) *PayoutClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &PayoutClient{
		url:      url,
		currency: currency,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Transfer sends the payout request for the full owed amount. A nil return
// means the gateway accepted the transfer.
func (c *PayoutClient) Transfer(ctx context.Context, account string, amountCents int64) error {
	payload := payoutRequest{
		Account:  account,
		Amount:   decimal.NewFromInt(amountCents).Div(decimal.NewFromInt(100)),
		Currency: c.currency,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for diagnostics; the gateway may
		// explain the rejection.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("payout gateway returned status %d: %s", resp.StatusCode, string(msg))
	}

	var ack payoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("failed to decode payout response: %w", err)
	}
	if ack.Status != "ok" && ack.Status != "accepted" {
		return fmt.Errorf("payout gateway rejected transfer: %s", ack.Status)
	}

	return nil
}
