package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/cashback-id/internal/errors"
	"github.com/cashback-id/internal/ledger"
	"github.com/cashback-id/internal/validate"
)

// handleHealth handles GET /api/health - lightweight check for deploys and
// monitoring; reports config status without exposing secrets.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":               true,
		"service":          "cashback-id",
		"ledgerConfigured": s.payments.Configured(),
		"network":          s.payments.Network(),
		"packageId":        s.payments.PackageID(),
	})
}

// handlePay handles POST /api/pay - forwards a validated checkout payment to
// the settlement executor.
func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PackageID       string      `json:"packageId"`
		ProfileID       string      `json:"profileId"`
		Amount          interface{} `json:"amount"`
		MerchantAddress string      `json:"merchantAddress"`
		RecipientName   string      `json:"recipientName"`
	}

	// UseNumber keeps integer amounts exact; the original API accepted
	// amounts as either a number or a string.
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "Invalid request body", nil)
		return
	}

	if err := validate.ProfileID(req.ProfileID); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, err.Error(), nil)
		return
	}

	var amountStr string
	switch v := req.Amount.(type) {
	case nil:
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "amount is required", nil)
		return
	case string:
		amountStr = v
	case json.Number:
		amountStr = v.String()
	default:
		amountStr = fmt.Sprint(v)
	}

	amountMist, err := validate.Amount(amountStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, err.Error(), nil)
		return
	}

	// A recipient name stands in for an explicit merchant address: the
	// name's stored settlement address becomes the payout target.
	if req.MerchantAddress == "" && req.RecipientName != "" {
		resolved, err := s.names.Resolve(r.Context(), req.RecipientName)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if resolved.Preferences.SettlementAddress == nil {
			respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter,
				"recipientName has no settlement address configured", nil)
			return
		}
		req.MerchantAddress = *resolved.Preferences.SettlementAddress
	}

	if req.MerchantAddress != "" {
		if err := validate.SettlementAddress(req.MerchantAddress); err != nil {
			respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "merchantAddress: "+err.Error(), nil)
			return
		}
	}

	if !s.payments.Configured() {
		respondError(w, http.StatusInternalServerError, apperrors.CodeInternalError, "Settlement executor is not configured", nil)
		return
	}

	result, err := s.payments.ProcessPayment(r.Context(), &ledger.PaymentRequest{
		PackageID:       req.PackageID,
		ProfileID:       req.ProfileID,
		AmountMist:      amountMist.String(),
		MerchantAddress: req.MerchantAddress,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.CodeInternalError, err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
