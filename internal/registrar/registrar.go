// Package registrar wraps the single outbound call that registers a claimed
// label on the external name registry. The service holds all subdomains
// custodially: registerFor(label, custodialOwner) is signed with the
// registrar owner key, and the link to the user lives in the allocation
// store, never on-chain.
package registrar

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/cashback-id/internal/config"
	"github.com/cashback-id/internal/logging"
)

// registrarABI covers the one function this service calls. The Name Wrapper
// errors are classified from revert text, not decoded.
const registrarABI = `[{"type":"function","name":"registerFor","stateMutability":"nonpayable","inputs":[{"name":"label","type":"string"},{"name":"registrant","type":"address"}],"outputs":[{"name":"node","type":"bytes32"}]}]`

// Status reports the registrar configuration without exposing secrets.
// Exposed verbatim by the registrar-status diagnostics endpoint.
type Status struct {
	KeyConfigured bool   `json:"keyConfigured"`
	KeySource     string `json:"keySource,omitempty"`
	KeyValid      bool   `json:"keyValid"`
	RPCConfigured bool   `json:"rpcConfigured"`
	RPCSource     string `json:"rpcSource,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	Ready         bool   `json:"ready"`
}

// Registrar sends registerFor transactions to the CashbackIdRegistrar
// contract. When the key or RPC endpoint is missing the service degrades to
// allocation-only: Register reports an error and nothing else breaks.
type Registrar struct {
	status   Status
	key      *ecdsa.PrivateKey
	wallet   common.Address
	contract common.Address
	chainID  *big.Int
	timeout  time.Duration
	parsed   abi.ABI
	rpcURL   string
	logger   *logging.Logger

	mu  sync.Mutex
	eth *ethclient.Client // dialed lazily when the startup dial failed

	// set when the configuration is incomplete; returned by Register
	disabledReason string
}

// New builds a Registrar from configuration. Construction never fails hard:
// a missing or invalid key yields a disabled registrar with a populated
// Status, matching the allocation-only degradation contract.
func New(cfg config.RegistrarConfig, logger *logging.Logger) *Registrar {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	r := &Registrar{
		contract: common.HexToAddress(cfg.ContractAddress),
		chainID:  big.NewInt(cfg.ChainID),
		timeout:  cfg.Timeout,
		logger:   logger.WithField("component", "registrar"),
	}

	r.status.KeyConfigured = cfg.PrivateKey != ""
	r.status.KeySource = cfg.PrivateKeySource
	r.status.RPCConfigured = cfg.RPCURL != ""
	r.status.RPCSource = cfg.RPCSource

	if !r.status.KeyConfigured {
		r.disabledReason = "ETH_REGISTRAR_OWNER_PRIVATE_KEY or PRIVATE_KEY not set"
		return r
	}

	key, err := parseKey(cfg.PrivateKey)
	if err != nil {
		r.disabledReason = "invalid private key format (expected 0x + 64 hex)"
		r.logger.Warn("Registrar key invalid, on-chain registration disabled")
		return r
	}
	r.key = key
	r.status.KeyValid = true
	r.wallet = crypto.PubkeyToAddress(key.PublicKey)
	r.status.WalletAddress = r.wallet.Hex()

	if !r.status.RPCConfigured {
		r.disabledReason = "ETH_RPC_URL not set"
		return r
	}

	parsed, err := abi.JSON(strings.NewReader(registrarABI))
	if err != nil {
		// static ABI, cannot happen at runtime
		r.disabledReason = fmt.Sprintf("registrar ABI: %v", err)
		return r
	}
	r.parsed = parsed

	r.rpcURL = cfg.RPCURL
	r.status.Ready = true

	// A failed startup dial is retried on the first registration, so a
	// transient RPC outage does not disable registration until restart.
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		r.logger.WithError(err).Warn("Registrar RPC dial failed, will retry on first registration")
		return r
	}
	r.eth = client
	return r
}

// client returns the RPC client, re-dialing if the startup dial failed.
func (r *Registrar) client() (*ethclient.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.eth != nil {
		return r.eth, nil
	}
	client, err := ethclient.Dial(r.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC: %w", err)
	}
	r.eth = client
	return client, nil
}

// Status returns the registrar diagnostics.
func (r *Registrar) Status() Status {
	return r.status
}

// WalletAddress returns the custodial registrant address, or the zero
// address when no key is configured.
func (r *Registrar) WalletAddress() common.Address {
	return r.wallet
}

// Register submits registerFor(label, custodialOwner) and returns the
// transaction hash. Callers decide success solely by the returned hash;
// the error text is diagnostics for the caller to surface.
func (r *Registrar) Register(ctx context.Context, label string) (string, error) {
	if !r.status.Ready {
		return "", fmt.Errorf("%s", r.disabledReason)
	}

	eth, err := r.client()
	if err != nil {
		return "", err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	opts, err := bind.NewKeyedTransactorWithChainID(r.key, r.chainID)
	if err != nil {
		return "", fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx

	contract := bind.NewBoundContract(r.contract, r.parsed, eth, eth, eth)
	tx, err := contract.Transact(opts, "registerFor", label, r.wallet)
	if err != nil {
		msg := ClassifyError(err.Error(), r.contract.Hex())
		r.logger.WithFields(map[string]interface{}{
			"label": label,
			"error": err.Error(),
		}).Warn("registerFor transaction failed")
		return "", fmt.Errorf("%s", msg)
	}

	hash := tx.Hash().Hex()
	r.logger.WithFields(map[string]interface{}{
		"label":  label,
		"txHash": hash,
		"wallet": r.wallet.Hex(),
	}).Info("registerFor transaction sent")
	return hash, nil
}

func parseKey(raw string) (*ecdsa.PrivateKey, error) {
	key := strings.TrimSpace(raw)
	key = strings.TrimPrefix(key, "0x")
	if len(key) != 64 {
		return nil, fmt.Errorf("expected 64 hex characters, got %d", len(key))
	}
	return crypto.HexToECDSA(key)
}
