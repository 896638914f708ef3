package api

import (
	"net/http"
	"strings"

	apperrors "github.com/cashback-id/internal/errors"
	"github.com/cashback-id/internal/service"
	"github.com/cashback-id/internal/types"
)

// claimResponse reports allocation and on-chain registration separately:
// registeredOnChain=false with a set fullName means "claimed, pending
// on-chain", and the caller retries via register-onchain.
type claimResponse struct {
	FullName          string `json:"fullName"`
	Label             string `json:"label"`
	RegisteredOnChain bool   `json:"registeredOnChain"`
	TxHash            string `json:"txHash,omitempty"`
	OnChainError      string `json:"onChainError,omitempty"`
}

// handleClaimSubdomain handles POST /api/ens/claim-subdomain
func (s *Server) handleClaimSubdomain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerKey       string `json:"ownerKey"`
		PreferredLabel string `json:"preferredLabel"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "Invalid request body", nil)
		return
	}

	result, err := s.names.Claim(r.Context(), &service.ClaimInput{
		OwnerKey:       req.OwnerKey,
		PreferredLabel: req.PreferredLabel,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, claimResponse{
		FullName:          result.FullName,
		Label:             result.Label,
		RegisteredOnChain: result.Registration.RegisteredOnChain,
		TxHash:            result.Registration.TxHash,
		OnChainError:      result.Registration.Error,
	})
}

// handleRegisterOnChain handles POST /api/ens/register-onchain, the retry
// path for allocations whose registration failed or never ran.
func (s *Server) handleRegisterOnChain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label          string `json:"label"`
		AllowUnclaimed bool   `json:"allowUnclaimed"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "Invalid request body", nil)
		return
	}

	result, err := s.names.RegisterOnChain(r.Context(), &service.RegisterInput{
		Label:          req.Label,
		AllowUnclaimed: req.AllowUnclaimed,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleRegistrarStatus handles GET /api/ens/registrar-status. Diagnostics
// only; always 200 and never exposes the key or the full RPC URL.
func (s *Server) handleRegistrarStatus(w http.ResponseWriter, r *http.Request) {
	status := s.names.RegistrarStatus()

	message := "On-chain registration active: new claims will be registered on Ethereum."
	switch {
	case !status.KeyConfigured:
		message = "ETH_REGISTRAR_OWNER_PRIVATE_KEY or PRIVATE_KEY is not set."
	case !status.KeyValid:
		message = "The private key must be hex with 0x and 64 characters."
	case !status.RPCConfigured:
		message = "ETH_RPC_URL is not set."
	case !status.Ready:
		message = "Check the key and RPC settings."
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"keyConfigured": status.KeyConfigured,
		"keySource":     status.KeySource,
		"keyValid":      status.KeyValid,
		"rpcConfigured": status.RPCConfigured,
		"rpcSource":     status.RPCSource,
		"walletAddress": status.WalletAddress,
		"ready":         status.Ready,
		"message":       message,
	})
}

// resolveResponse carries nulls for unset fields so clients can tell "unset"
// from "empty string".
type resolveResponse struct {
	FullName          string   `json:"fullName"`
	ChainID           *int64   `json:"chainId"`
	Asset             *string  `json:"asset"`
	Pool              *string  `json:"pool"`
	SettlementAddress *string  `json:"settlementAddress"`
	Threshold         *float64 `json:"threshold"`
	ProfileID         *string  `json:"profileId"`
}

// handleResolve handles GET /api/ens/resolve?name=alice.cashbackid.eth.
// Unallocated names and allocated-but-unconfigured names both map to 404
// but carry distinct error codes (NOT_FOUND vs NO_PREFERENCES).
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "name is required", nil)
		return
	}

	result, err := s.names.Resolve(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	prefs := result.Preferences
	respondJSON(w, http.StatusOK, resolveResponse{
		FullName:          result.FullName,
		ChainID:           prefs.ChainID,
		Asset:             prefs.Asset,
		Pool:              prefs.Pool,
		SettlementAddress: prefs.SettlementAddress,
		Threshold:         prefs.SweepThreshold,
		ProfileID:         prefs.ProfileID,
	})
}

// handleSetPreferences handles POST /api/ens/set-preferences
func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName    string `json:"fullName"`
		OwnerKey    string `json:"ownerKey"`
		Preferences struct {
			ChainID           *int64   `json:"chainId"`
			Asset             *string  `json:"asset"`
			Pool              *string  `json:"pool"`
			SettlementAddress *string  `json:"settlementAddress"`
			Threshold         *float64 `json:"threshold"`
			ProfileID         *string  `json:"profileId"`
		} `json:"preferences"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidParameter, "Invalid request body", nil)
		return
	}

	result, err := s.names.SetPreferences(r.Context(), &service.SetPreferencesInput{
		FullName: req.FullName,
		OwnerKey: req.OwnerKey,
		Preferences: &types.Preferences{
			ChainID:           req.Preferences.ChainID,
			Asset:             req.Preferences.Asset,
			Pool:              req.Preferences.Pool,
			SettlementAddress: req.Preferences.SettlementAddress,
			SweepThreshold:    req.Preferences.Threshold,
			ProfileID:         req.Preferences.ProfileID,
		},
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
