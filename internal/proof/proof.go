// Package proof builds and persists immutable cashback proofs. Every
// cashback event gets a content-addressed record pinned on IPFS so the full
// payout history of a name stays auditable outside this process.
package proof

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cashback-id/internal/types"
)

// CashbackProof is one immutable cashback event record.
type CashbackProof struct {
	ID             string            `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	FullName       string            `json:"fullName"`
	SettlementAddr string            `json:"settlementAddress"`
	SourceChainID  int64             `json:"sourceChainId"`
	SourceTxHash   string            `json:"sourceTxHash"`
	SourceAsset    string            `json:"sourceAsset"`
	CashbackAmount string            `json:"cashbackAmount"`
	DestChainID    int64             `json:"destChainId"`
	DestTxHash     string            `json:"destTxHash,omitempty"`
	DestAsset      string            `json:"destAsset"`
	SettledAmount  string            `json:"settledAmount,omitempty"`
	BridgeTool     string            `json:"bridgeTool,omitempty"`
	ZKProofHash    string            `json:"zkProofHash,omitempty"`
	Merchant       string            `json:"merchant"`
	Status         types.ProofStatus `json:"status"`
}

// HistoryStats aggregates a name's proofs.
type HistoryStats struct {
	TotalCashbackUSD  float64 `json:"totalCashbackUSD"`
	TotalSettledUSD   float64 `json:"totalSettledUSD"`
	TotalTransactions int     `json:"totalTransactions"`
	ChainsUsed        []int64 `json:"chainsUsed"`
}

// CashbackHistory is the full proof history of one name, newest first. Its
// CID can be written to the name's content-hash record for public audit.
type CashbackHistory struct {
	Version     int             `json:"version"`
	FullName    string          `json:"fullName"`
	Proofs      []CashbackProof `json:"proofs"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Stats       HistoryStats    `json:"stats"`
}

// ProofParams carries the event data needed to build a proof.
type ProofParams struct {
	FullName       string
	SettlementAddr string
	SourceChainID  int64
	SourceTxHash   string
	SourceAsset    string
	CashbackAmount string
	DestChainID    int64
	DestAsset      string
	Merchant       string
	BridgeTool     string
	ZKProofHash    string
}

// NewProof creates a pending proof for a fresh cashback event.
func NewProof(params ProofParams) *CashbackProof {
	return &CashbackProof{
		ID:             "cb_" + uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		FullName:       params.FullName,
		SettlementAddr: params.SettlementAddr,
		SourceChainID:  params.SourceChainID,
		SourceTxHash:   params.SourceTxHash,
		SourceAsset:    params.SourceAsset,
		CashbackAmount: params.CashbackAmount,
		DestChainID:    params.DestChainID,
		DestAsset:      params.DestAsset,
		BridgeTool:     params.BridgeTool,
		ZKProofHash:    params.ZKProofHash,
		Merchant:       params.Merchant,
		Status:         types.ProofPending,
	}
}

// NewHistory assembles a history document with aggregated stats.
func NewHistory(fullName string, proofs []CashbackProof) *CashbackHistory {
	stats := HistoryStats{TotalTransactions: len(proofs)}
	seen := make(map[int64]bool)
	for _, p := range proofs {
		stats.TotalCashbackUSD += parseAmount(p.CashbackAmount)
		if p.Status == types.ProofSettled {
			stats.TotalSettledUSD += parseAmount(p.SettledAmount)
		}
		for _, chain := range []int64{p.SourceChainID, p.DestChainID} {
			if !seen[chain] {
				seen[chain] = true
				stats.ChainsUsed = append(stats.ChainsUsed, chain)
			}
		}
	}

	return &CashbackHistory{
		Version:     1,
		FullName:    fullName,
		Proofs:      proofs,
		LastUpdated: time.Now().UTC(),
		Stats:       stats,
	}
}

func parseAmount(amount string) float64 {
	if amount == "" {
		return 0
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return v
}
