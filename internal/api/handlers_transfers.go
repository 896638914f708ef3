package api

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/cashback-id/internal/errors"
)

// handleTransferStatus handles GET /api/transfers/status?txHash=&fromChainId=&toChainId=
// A routing-service outage degrades to status NOT_FOUND, never a 5xx.
func (s *Server) handleTransferStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	txHash := strings.TrimSpace(q.Get("txHash"))
	if txHash == "" {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "txHash is required", nil)
		return
	}

	fromChainID, err := strconv.ParseInt(q.Get("fromChainId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "fromChainId is required and must be a number", nil)
		return
	}

	toChainID, err := strconv.ParseInt(q.Get("toChainId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "toChainId is required and must be a number", nil)
		return
	}

	result := s.transfers.CheckTransferStatus(r.Context(), txHash, fromChainID, toChainID)
	respondJSON(w, http.StatusOK, result)
}
