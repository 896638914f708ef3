package api

import (
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/cashback-id/internal/errors"
	"github.com/cashback-id/internal/proof"
	"github.com/cashback-id/internal/validate"
)

// proofResponse pairs the recorded proof with its pinned location.
type proofResponse struct {
	Proof                 *proof.CashbackProof `json:"proof"`
	CID                   string               `json:"cid"`
	GatewayURL            string               `json:"gatewayUrl"`
	FilecoinDealInitiated bool                 `json:"filecoinDealInitiated"`
}

// handleCreateProof handles POST /api/proofs - records a cashback event as an
// immutable proof and pins it on IPFS. Pinning is best-effort inside the
// client, so a reachable gateway is not required for the record to exist.
func (s *Server) handleCreateProof(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName          string `json:"fullName"`
		SettlementAddress string `json:"settlementAddress"`
		SourceChainID     int64  `json:"sourceChainId"`
		SourceTxHash      string `json:"sourceTxHash"`
		SourceAsset       string `json:"sourceAsset"`
		CashbackAmount    string `json:"cashbackAmount"`
		DestChainID       int64  `json:"destChainId"`
		DestAsset         string `json:"destAsset"`
		Merchant          string `json:"merchant"`
		BridgeTool        string `json:"bridgeTool"`
		ZKProofHash       string `json:"zkProofHash"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "Invalid request body", nil)
		return
	}

	if req.FullName == "" {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "fullName is required", nil)
		return
	}
	if req.SourceTxHash == "" {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "sourceTxHash is required", nil)
		return
	}
	if req.CashbackAmount == "" {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "cashbackAmount is required", nil)
		return
	}
	if req.SettlementAddress != "" {
		if err := validate.SettlementAddress(req.SettlementAddress); err != nil {
			respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "settlementAddress: "+err.Error(), nil)
			return
		}
	}

	p := proof.NewProof(proof.ProofParams{
		FullName:       req.FullName,
		SettlementAddr: req.SettlementAddress,
		SourceChainID:  req.SourceChainID,
		SourceTxHash:   req.SourceTxHash,
		SourceAsset:    req.SourceAsset,
		CashbackAmount: req.CashbackAmount,
		DestChainID:    req.DestChainID,
		DestAsset:      req.DestAsset,
		Merchant:       req.Merchant,
		BridgeTool:     req.BridgeTool,
		ZKProofHash:    req.ZKProofHash,
	})

	result, err := s.proofs.UploadProof(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusBadGateway, apperrors.CodeInternalError, err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusOK, proofResponse{
		Proof:                 p,
		CID:                   result.CID,
		GatewayURL:            result.GatewayURL,
		FilecoinDealInitiated: result.FilecoinDealInitiated,
	})
}

// handleGetProof handles GET /api/proofs/{cid} - fetches a pinned proof or
// history document through the gateway.
func (s *Server) handleGetProof(w http.ResponseWriter, r *http.Request) {
	cid := mux.Vars(r)["cid"]

	var doc map[string]interface{}
	if err := s.proofs.Fetch(r.Context(), cid, &doc); err != nil {
		respondError(w, http.StatusBadGateway, apperrors.CodeInternalError, err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}
