// Package ledger wraps the settlement executor that signs and submits
// checkout payments on the settlement network. Transaction construction and
// signing live in the executor; this client only knows the narrow
// request/response contract the pay endpoint needs.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cashback-id/internal/config"
	"github.com/cashback-id/internal/logging"
)

// PaymentRequest is the executor's input contract.
type PaymentRequest struct {
	PackageID       string `json:"packageId"`
	ProfileID       string `json:"profileId"`
	AmountMist      string `json:"amountMist"`
	MerchantAddress string `json:"merchantAddress,omitempty"`
	GasBudget       uint64 `json:"gasBudget,omitempty"`
}

// PaymentResult is the executor's output contract.
type PaymentResult struct {
	Digest string            `json:"digest"`
	Events []json.RawMessage `json:"events,omitempty"`
}

// ExecutorClient submits payments to the configured settlement executor.
type ExecutorClient struct {
	cfg    config.LedgerConfig
	client *http.Client
	logger *logging.Logger
}

// NewExecutorClient creates a settlement executor client.
func NewExecutorClient(cfg config.LedgerConfig, logger *logging.Logger) *ExecutorClient {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &ExecutorClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger.WithField("component", "ledger"),
	}
}

// Configured reports whether the executor credential is present. Without it
// the pay endpoint fails with a clear reason instead of a broken call.
func (c *ExecutorClient) Configured() bool {
	return c.cfg.Credential != "" && c.cfg.ExecutorURL != ""
}

// Network returns the configured settlement network name.
func (c *ExecutorClient) Network() string {
	return c.cfg.Network
}

// PackageID returns the configured checkout package id.
func (c *ExecutorClient) PackageID() string {
	return c.cfg.PackageID
}

// GasBudget returns the configured gas budget for payment transactions.
func (c *ExecutorClient) GasBudget() uint64 {
	return c.cfg.GasBudget
}

// ProcessPayment forwards a validated payment to the executor and returns
// its transaction digest.
func (c *ExecutorClient) ProcessPayment(ctx context.Context, req *PaymentRequest) (*PaymentResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("settlement executor is not configured (SUI_PRIVATE_KEY / SUI_EXECUTOR_URL)")
	}

	if req.PackageID == "" {
		req.PackageID = c.cfg.PackageID
	}
	if req.GasBudget == 0 {
		req.GasBudget = c.cfg.GasBudget
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ExecutorURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Credential)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("settlement executor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(data),
		}).Warn("Settlement executor rejected payment")
		return nil, fmt.Errorf("settlement executor returned %d", resp.StatusCode)
	}

	var result PaymentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode payment result: %w", err)
	}
	if result.Digest == "" {
		return nil, fmt.Errorf("settlement executor returned no digest")
	}

	c.logger.WithFields(map[string]interface{}{
		"digest":    result.Digest,
		"profileId": req.ProfileID,
	}).Info("Payment processed")
	return &result, nil
}
