// Package routing wraps the cross-chain routing service (LI.FI) status API.
// Routing algorithms are owned by the external service; this client only
// knows the request/response contract of the status lookup used by the
// transfers endpoint.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cashback-id/internal/config"
	"github.com/cashback-id/internal/logging"
	"github.com/cashback-id/internal/types"
)

// TransferStatusResult is the caller-facing view of a status lookup.
type TransferStatusResult struct {
	Status          types.TransferStatus `json:"status"`
	Substatus       string               `json:"substatus,omitempty"`
	SendingChain    int64                `json:"sendingChain"`
	ReceivingChain  int64                `json:"receivingChain"`
	SendingAmount   string               `json:"sendingAmount"`
	ReceivingAmount string               `json:"receivingAmount,omitempty"`
	TxHash          string               `json:"txHash,omitempty"`
	BridgeName      string               `json:"bridgeName,omitempty"`
}

// statusResponse mirrors the routing service's wire format.
type statusResponse struct {
	Status    string `json:"status"`
	Substatus string `json:"substatus"`
	Tool      string `json:"tool"`
	Sending   *struct {
		Amount string `json:"amount"`
		TxHash string `json:"txHash"`
	} `json:"sending"`
	Receiving *struct {
		Amount string `json:"amount"`
	} `json:"receiving"`
}

// LifiClient queries the LI.FI HTTP API.
type LifiClient struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewLifiClient creates a routing status client.
func NewLifiClient(cfg config.RoutingConfig, logger *logging.Logger) *LifiClient {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LifiClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.WithField("component", "routing"),
	}
}

// CheckTransferStatus looks up a cross-chain transfer by source tx hash.
// Any failure to reach or parse the routing service degrades to NOT_FOUND;
// the endpoint never turns a collaborator outage into a 5xx.
func (c *LifiClient) CheckTransferStatus(ctx context.Context, txHash string, fromChainID, toChainID int64) *TransferStatusResult {
	notFound := &TransferStatusResult{
		Status:         types.TransferNotFound,
		SendingChain:   fromChainID,
		ReceivingChain: toChainID,
		SendingAmount:  "0",
		TxHash:         txHash,
	}

	q := url.Values{}
	q.Set("txHash", txHash)
	q.Set("fromChain", strconv.FormatInt(fromChainID, 10))
	q.Set("toChain", strconv.FormatInt(toChainID, 10))
	endpoint := fmt.Sprintf("%s/v1/status?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return notFound
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Transfer status lookup failed")
		return notFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("Transfer status lookup returned non-200")
		return notFound
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.WithError(err).Warn("Transfer status response malformed")
		return notFound
	}

	result := &TransferStatusResult{
		Status:         types.TransferStatus(body.Status),
		Substatus:      body.Substatus,
		SendingChain:   fromChainID,
		ReceivingChain: toChainID,
		SendingAmount:  "0",
		TxHash:         txHash,
		BridgeName:     body.Tool,
	}
	if result.Status == "" {
		result.Status = types.TransferNotFound
	}
	if body.Sending != nil {
		if body.Sending.Amount != "" {
			result.SendingAmount = body.Sending.Amount
		}
		if body.Sending.TxHash != "" {
			result.TxHash = body.Sending.TxHash
		}
	}
	if body.Receiving != nil {
		result.ReceivingAmount = body.Receiving.Amount
	}
	return result
}
