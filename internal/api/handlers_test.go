package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/cashback-id/internal/errors"
	"github.com/cashback-id/internal/ledger"
	"github.com/cashback-id/internal/proof"
	"github.com/cashback-id/internal/registrar"
	"github.com/cashback-id/internal/service"
	"github.com/cashback-id/internal/types"
)

func postJSON(t *testing.T, server *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	return w
}

// TestClaimSubdomain_Success tests a successful claim with registration
func TestClaimSubdomain_Success(t *testing.T) {
	server, _, _ := createTestServer()

	w := postJSON(t, server, "/api/ens/claim-subdomain", map[string]interface{}{
		"ownerKey":       "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"preferredLabel": "alice",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response claimResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.FullName != "alice.cashbackid.eth" {
		t.Errorf("Expected fullName alice.cashbackid.eth, got %s", response.FullName)
	}
	if !response.RegisteredOnChain {
		t.Error("Expected registeredOnChain true")
	}
	if response.TxHash != "0xtxhash" {
		t.Errorf("Expected txHash 0xtxhash, got %s", response.TxHash)
	}
}

// TestClaimSubdomain_RegistrationFailureStillClaims tests that a failed
// on-chain registration still returns the allocation with 200
func TestClaimSubdomain_RegistrationFailureStillClaims(t *testing.T) {
	server, names, _ := createTestServer()
	names.claimFunc = func(ctx context.Context, input *service.ClaimInput) (*service.ClaimResult, error) {
		return &service.ClaimResult{
			FullName:     "alice.cashbackid.eth",
			Label:        "alice",
			Registration: types.RegistrationStatus{Error: "rpc unreachable"},
		}, nil
	}

	w := postJSON(t, server, "/api/ens/claim-subdomain", map[string]interface{}{
		"ownerKey": "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response claimResponse
	json.NewDecoder(w.Body).Decode(&response)
	if response.RegisteredOnChain {
		t.Error("Expected registeredOnChain false")
	}
	if response.OnChainError != "rpc unreachable" {
		t.Errorf("Expected onChainError to carry the failure, got %q", response.OnChainError)
	}
}

// TestClaimSubdomain_InvalidJSON tests handling of malformed JSON
func TestClaimSubdomain_InvalidJSON(t *testing.T) {
	server, _, _ := createTestServer()

	req := httptest.NewRequest("POST", "/api/ens/claim-subdomain", strings.NewReader("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

// TestClaimSubdomain_InvalidOwnerKey tests the service-level owner key check
func TestClaimSubdomain_InvalidOwnerKey(t *testing.T) {
	server, names, _ := createTestServer()
	names.claimFunc = func(ctx context.Context, input *service.ClaimInput) (*service.ClaimResult, error) {
		return nil, apperrors.NewInvalidOwnerKeyError("ownerKey is required and must be a valid address")
	}

	w := postJSON(t, server, "/api/ens/claim-subdomain", map[string]interface{}{"ownerKey": "0x1"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if response := decodeError(t, w); response.Error.Code != apperrors.CodeInvalidOwnerKey {
		t.Errorf("Expected code INVALID_OWNER_KEY, got %s", response.Error.Code)
	}
}

// TestClaimSubdomain_LabelTaken tests the conflict response
func TestClaimSubdomain_LabelTaken(t *testing.T) {
	server, names, _ := createTestServer()
	names.claimFunc = func(ctx context.Context, input *service.ClaimInput) (*service.ClaimResult, error) {
		return nil, apperrors.NewLabelTakenError(input.PreferredLabel)
	}

	w := postJSON(t, server, "/api/ens/claim-subdomain", map[string]interface{}{
		"ownerKey":       "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"preferredLabel": "alice",
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", w.Code)
	}
	if response := decodeError(t, w); response.Error.Code != apperrors.CodeLabelTaken {
		t.Errorf("Expected code LABEL_TAKEN, got %s", response.Error.Code)
	}
}

// TestRegisterOnChain_Success tests the explicit registration retry path
func TestRegisterOnChain_Success(t *testing.T) {
	server, _, _ := createTestServer()

	w := postJSON(t, server, "/api/ens/register-onchain", map[string]interface{}{"label": "alice"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response service.RegisterResult
	json.NewDecoder(w.Body).Decode(&response)
	if response.TxHash != "0xtxhash" {
		t.Errorf("Expected txHash 0xtxhash, got %s", response.TxHash)
	}
}

// TestRegisterOnChain_NotClaimed tests registration of an unallocated label
func TestRegisterOnChain_NotClaimed(t *testing.T) {
	server, names, _ := createTestServer()
	names.registerFunc = func(ctx context.Context, input *service.RegisterInput) (*service.RegisterResult, error) {
		return nil, apperrors.NewNotClaimedError("ghost.cashbackid.eth")
	}

	w := postJSON(t, server, "/api/ens/register-onchain", map[string]interface{}{"label": "ghost"})

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if response := decodeError(t, w); response.Error.Code != apperrors.CodeNotClaimed {
		t.Errorf("Expected code NOT_CLAIMED, got %s", response.Error.Code)
	}
}

// TestRegistrarStatus tests the diagnostics endpoint messages
func TestRegistrarStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      registrar.Status
		wantMessage string
	}{
		{
			name: "ready",
			status: registrar.Status{
				KeyConfigured: true, KeyValid: true, RPCConfigured: true, Ready: true,
			},
			wantMessage: "On-chain registration active",
		},
		{
			name:        "no key",
			status:      registrar.Status{},
			wantMessage: "ETH_REGISTRAR_OWNER_PRIVATE_KEY or PRIVATE_KEY is not set",
		},
		{
			name:        "invalid key",
			status:      registrar.Status{KeyConfigured: true},
			wantMessage: "hex with 0x and 64 characters",
		},
		{
			name:        "no rpc",
			status:      registrar.Status{KeyConfigured: true, KeyValid: true},
			wantMessage: "ETH_RPC_URL is not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, names, _ := createTestServer()
			names.status = tt.status

			req := httptest.NewRequest("GET", "/api/ens/registrar-status", nil)
			w := httptest.NewRecorder()
			server.router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var response map[string]interface{}
			json.NewDecoder(w.Body).Decode(&response)
			message, _ := response["message"].(string)
			if !strings.Contains(message, tt.wantMessage) {
				t.Errorf("Expected message containing %q, got %q", tt.wantMessage, message)
			}
		})
	}
}

// TestResolve_Success tests resolution of a configured name
func TestResolve_Success(t *testing.T) {
	server, _, _ := createTestServer()

	req := httptest.NewRequest("GET", "/api/ens/resolve?name=alice.cashbackid.eth", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	// Unset preference fields must be present as null, not omitted.
	body := w.Body.String()
	if !strings.Contains(body, `"pool":null`) {
		t.Errorf("Expected unset pool serialized as null, got %s", body)
	}

	var response resolveResponse
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.FullName != "alice.cashbackid.eth" {
		t.Errorf("Expected fullName alice.cashbackid.eth, got %s", response.FullName)
	}
	if response.ChainID == nil || *response.ChainID != 8453 {
		t.Errorf("Expected chainId 8453, got %v", response.ChainID)
	}
	if response.Asset == nil || *response.Asset != "USDC" {
		t.Errorf("Expected asset USDC, got %v", response.Asset)
	}
}

// TestResolve_MissingName tests the query validation
func TestResolve_MissingName(t *testing.T) {
	server, _, _ := createTestServer()

	req := httptest.NewRequest("GET", "/api/ens/resolve", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

// TestResolve_DistinctNotFoundCodes tests that unallocated names and
// unconfigured names both 404 but with distinguishable codes
func TestResolve_DistinctNotFoundCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"unallocated", apperrors.NewNotFoundError("subdomain", "ghost.cashbackid.eth"), apperrors.CodeNotFound},
		{"no preferences", apperrors.NewNoPreferencesError("alice.cashbackid.eth"), apperrors.CodeNoPreferences},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, names, _ := createTestServer()
			names.resolveFunc = func(ctx context.Context, name string) (*service.ResolveResult, error) {
				return nil, tt.err
			}

			req := httptest.NewRequest("GET", "/api/ens/resolve?name=x.cashbackid.eth", nil)
			w := httptest.NewRecorder()
			server.router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Fatalf("Expected status 404, got %d", w.Code)
			}
			if response := decodeError(t, w); response.Error.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, response.Error.Code)
			}
		})
	}
}

// TestSetPreferences_Success tests a preference write with threshold mapping
func TestSetPreferences_Success(t *testing.T) {
	server, names, _ := createTestServer()

	var got *service.SetPreferencesInput
	names.setPreferencesFunc = func(ctx context.Context, input *service.SetPreferencesInput) (*service.SetPreferencesResult, error) {
		got = input
		return &service.SetPreferencesResult{FullName: input.FullName, Saved: true}, nil
	}

	w := postJSON(t, server, "/api/ens/set-preferences", map[string]interface{}{
		"fullName": "alice.cashbackid.eth",
		"preferences": map[string]interface{}{
			"chainId":   8453,
			"asset":     "USDC",
			"threshold": 25.5,
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got == nil {
		t.Fatal("Expected service to be called")
	}
	if got.Preferences.SweepThreshold == nil || *got.Preferences.SweepThreshold != 25.5 {
		t.Errorf("Expected threshold mapped to sweep threshold, got %v", got.Preferences.SweepThreshold)
	}
	if got.Preferences.Pool != nil {
		t.Error("Expected absent fields to stay nil")
	}
}

// TestSetPreferences_NoTarget tests a write without fullName or ownerKey
func TestSetPreferences_NoTarget(t *testing.T) {
	server, names, _ := createTestServer()
	names.setPreferencesFunc = func(ctx context.Context, input *service.SetPreferencesInput) (*service.SetPreferencesResult, error) {
		return nil, apperrors.NewInvalidParameterError("fullName", "provide fullName (your subdomain) or ownerKey to save preferences")
	}

	w := postJSON(t, server, "/api/ens/set-preferences", map[string]interface{}{
		"preferences": map[string]interface{}{"asset": "USDC"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

// TestPay_Success tests a payment with a string amount
func TestPay_Success(t *testing.T) {
	server, _, payments := createTestServer()

	var got *ledger.PaymentRequest
	payments.processFunc = func(ctx context.Context, req *ledger.PaymentRequest) (*ledger.PaymentResult, error) {
		got = req
		return &ledger.PaymentResult{Digest: "AbCdEf123"}, nil
	}

	w := postJSON(t, server, "/api/pay", map[string]interface{}{
		"profileId": "0x742d35cc6634c0532925a3b844bc454e4438f44e742d35cc6634c0532925a3b8",
		"amount":    "1.5",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got == nil {
		t.Fatal("Expected payment to be processed")
	}
	if got.AmountMist != "1500000000" {
		t.Errorf("Expected amount scaled to MIST, got %s", got.AmountMist)
	}

	var response ledger.PaymentResult
	json.NewDecoder(w.Body).Decode(&response)
	if response.Digest != "AbCdEf123" {
		t.Errorf("Expected digest AbCdEf123, got %s", response.Digest)
	}
}

// TestPay_NumericAmount tests that JSON number amounts keep full precision
func TestPay_NumericAmount(t *testing.T) {
	server, _, payments := createTestServer()

	var got *ledger.PaymentRequest
	payments.processFunc = func(ctx context.Context, req *ledger.PaymentRequest) (*ledger.PaymentResult, error) {
		got = req
		return &ledger.PaymentResult{Digest: "ok"}, nil
	}

	w := postJSON(t, server, "/api/pay", map[string]interface{}{
		"profileId": "0x742d35cc6634c0532925a3b844bc454e4438f44e742d35cc6634c0532925a3b8",
		"amount":    100000000000,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got.AmountMist != "100000000000" {
		t.Errorf("Expected integer amount taken as MIST, got %s", got.AmountMist)
	}
}

// TestPay_Validation tests the request checks that run before the executor
func TestPay_Validation(t *testing.T) {
	validProfile := "0x742d35cc6634c0532925a3b844bc454e4438f44e742d35cc6634c0532925a3b8"

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing profileId", map[string]interface{}{"amount": "1"}},
		{"malformed profileId", map[string]interface{}{"profileId": "profile-1", "amount": "1"}},
		{"missing amount", map[string]interface{}{"profileId": validProfile}},
		{"zero amount", map[string]interface{}{"profileId": validProfile, "amount": "0"}},
		{"bad merchant address", map[string]interface{}{
			"profileId": validProfile, "amount": "1", "merchantAddress": "0x123",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, _ := createTestServer()
			w := postJSON(t, server, "/api/pay", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

// TestPay_RecipientNameResolvesSettlementAddress tests paying a managed name
func TestPay_RecipientNameResolvesSettlementAddress(t *testing.T) {
	server, names, payments := createTestServer()

	settlement := "0x742d35cc6634c0532925a3b844bc454e4438f44e742d35cc6634c0532925a3b8"
	names.resolveFunc = func(ctx context.Context, name string) (*service.ResolveResult, error) {
		if name != "alice.cashbackid.eth" {
			t.Errorf("Expected resolve of alice.cashbackid.eth, got %s", name)
		}
		return &service.ResolveResult{
			FullName:    "alice.cashbackid.eth",
			Preferences: &types.Preferences{SettlementAddress: &settlement},
		}, nil
	}

	var got *ledger.PaymentRequest
	payments.processFunc = func(ctx context.Context, req *ledger.PaymentRequest) (*ledger.PaymentResult, error) {
		got = req
		return &ledger.PaymentResult{Digest: "ok"}, nil
	}

	w := postJSON(t, server, "/api/pay", map[string]interface{}{
		"profileId":     settlement,
		"amount":        "1",
		"recipientName": "alice.cashbackid.eth",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got == nil || got.MerchantAddress != settlement {
		t.Errorf("Expected merchant address resolved from name, got %+v", got)
	}
}

// TestPay_RecipientNameWithoutSettlementAddress tests a name with no payout target
func TestPay_RecipientNameWithoutSettlementAddress(t *testing.T) {
	server, names, _ := createTestServer()
	names.resolveFunc = func(ctx context.Context, name string) (*service.ResolveResult, error) {
		asset := "USDC"
		return &service.ResolveResult{
			FullName:    "alice.cashbackid.eth",
			Preferences: &types.Preferences{Asset: &asset},
		}, nil
	}

	w := postJSON(t, server, "/api/pay", map[string]interface{}{
		"profileId":     "0x742d35cc6634c0532925a3b844bc454e4438f44e742d35cc6634c0532925a3b8",
		"amount":        "1",
		"recipientName": "alice.cashbackid.eth",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

// TestPay_UnknownRecipientName tests resolve failures surfacing as-is
func TestPay_UnknownRecipientName(t *testing.T) {
	server, names, _ := createTestServer()
	names.resolveFunc = func(ctx context.Context, name string) (*service.ResolveResult, error) {
		return nil, apperrors.NewNotFoundError("subdomain", name)
	}

	w := postJSON(t, server, "/api/pay", map[string]interface{}{
		"profileId":     "0x742d35cc6634c0532925a3b844bc454e4438f44e742d35cc6634c0532925a3b8",
		"amount":        "1",
		"recipientName": "ghost.cashbackid.eth",
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if response := decodeError(t, w); response.Error.Code != apperrors.CodeNotFound {
		t.Errorf("Expected code NOT_FOUND, got %s", response.Error.Code)
	}
}

// TestPay_NotConfigured tests payment without executor credentials
func TestPay_NotConfigured(t *testing.T) {
	server, _, payments := createTestServer()
	payments.configured = false

	w := postJSON(t, server, "/api/pay", map[string]interface{}{
		"profileId": "0x742d35cc6634c0532925a3b844bc454e4438f44e742d35cc6634c0532925a3b8",
		"amount":    "1",
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

// TestTransferStatus_Success tests the pass-through lookup
func TestTransferStatus_Success(t *testing.T) {
	server, _, _ := createTestServer()

	req := httptest.NewRequest("GET", "/api/transfers/status?txHash=0xabc&fromChainId=8453&toChainId=42161", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.NewDecoder(w.Body).Decode(&response)
	if response["status"] != "DONE" {
		t.Errorf("Expected status DONE, got %v", response["status"])
	}
	if response["sendingChain"] != float64(8453) {
		t.Errorf("Expected sendingChain 8453, got %v", response["sendingChain"])
	}
}

// TestTransferStatus_MissingParams tests the query validation
func TestTransferStatus_MissingParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"no txHash", "?fromChainId=1&toChainId=10"},
		{"no fromChainId", "?txHash=0xabc&toChainId=10"},
		{"no toChainId", "?txHash=0xabc&fromChainId=1"},
		{"non-numeric chain", "?txHash=0xabc&fromChainId=abc&toChainId=10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, _ := createTestServer()

			req := httptest.NewRequest("GET", "/api/transfers/status"+tt.query, nil)
			w := httptest.NewRecorder()
			server.router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

// TestCreateProof_Success tests recording and pinning a cashback proof
func TestCreateProof_Success(t *testing.T) {
	server, proofs := createProofTestServer()

	var pinned *proof.CashbackProof
	proofs.uploadFunc = func(ctx context.Context, p *proof.CashbackProof) (*proof.UploadResult, error) {
		pinned = p
		return &proof.UploadResult{
			CID:                   "bafybeigabc",
			GatewayURL:            "https://w3s.link/ipfs/bafybeigabc",
			Size:                  256,
			FilecoinDealInitiated: true,
		}, nil
	}

	w := postJSON(t, server, "/api/proofs", map[string]interface{}{
		"fullName":       "alice.cashbackid.eth",
		"sourceChainId":  8453,
		"sourceTxHash":   "0xsourcetx",
		"sourceAsset":    "USDC",
		"cashbackAmount": "12.50",
		"destChainId":    42161,
		"destAsset":      "USDC",
		"merchant":       "coffee-shop",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response proofResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.CID != "bafybeigabc" {
		t.Errorf("Expected cid bafybeigabc, got %s", response.CID)
	}
	if !response.FilecoinDealInitiated {
		t.Error("Expected filecoinDealInitiated true")
	}
	if response.Proof == nil || response.Proof.FullName != "alice.cashbackid.eth" {
		t.Fatalf("Expected proof for alice.cashbackid.eth, got %+v", response.Proof)
	}
	if !strings.HasPrefix(response.Proof.ID, "cb_") {
		t.Errorf("Expected cb_ proof id, got %s", response.Proof.ID)
	}
	if pinned == nil || pinned.Status != types.ProofPending {
		t.Errorf("Expected a pending proof to be pinned, got %+v", pinned)
	}
}

// TestCreateProof_Validation tests the request validation
func TestCreateProof_Validation(t *testing.T) {
	base := map[string]interface{}{
		"fullName":       "alice.cashbackid.eth",
		"sourceTxHash":   "0xsourcetx",
		"cashbackAmount": "12.50",
	}

	tests := []struct {
		name   string
		mutate func(body map[string]interface{})
	}{
		{"missing fullName", func(b map[string]interface{}) { delete(b, "fullName") }},
		{"missing sourceTxHash", func(b map[string]interface{}) { delete(b, "sourceTxHash") }},
		{"missing cashbackAmount", func(b map[string]interface{}) { delete(b, "cashbackAmount") }},
		{"malformed settlementAddress", func(b map[string]interface{}) { b["settlementAddress"] = "0x123" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := createProofTestServer()

			body := map[string]interface{}{}
			for k, v := range base {
				body[k] = v
			}
			tt.mutate(body)

			w := postJSON(t, server, "/api/proofs", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
			response := decodeError(t, w)
			if response.Error.Code != apperrors.CodeInvalidParameter {
				t.Errorf("Expected code INVALID_PARAMETER, got %s", response.Error.Code)
			}
		})
	}
}

// TestGetProof_Success tests fetching a pinned document by CID
func TestGetProof_Success(t *testing.T) {
	server, proofs := createProofTestServer()

	var fetchedCID string
	proofs.fetchFunc = func(ctx context.Context, cid string, dest interface{}) error {
		fetchedCID = cid
		doc := dest.(*map[string]interface{})
		*doc = map[string]interface{}{"id": "cb_stored", "fullName": "alice.cashbackid.eth"}
		return nil
	}

	req := httptest.NewRequest("GET", "/api/proofs/bafybeigstored", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if fetchedCID != "bafybeigstored" {
		t.Errorf("Expected fetch for bafybeigstored, got %s", fetchedCID)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["id"] != "cb_stored" {
		t.Errorf("Expected id cb_stored, got %v", response["id"])
	}
}

// TestGetProof_GatewayFailure tests that an unreachable gateway maps to 502
func TestGetProof_GatewayFailure(t *testing.T) {
	server, proofs := createProofTestServer()
	proofs.fetchFunc = func(ctx context.Context, cid string, dest interface{}) error {
		return errors.New("gateway returned 504 for " + cid)
	}

	req := httptest.NewRequest("GET", "/api/proofs/bafybeiggone", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", w.Code)
	}
}
