// Package service composes the allocation store with the on-chain registrar
// and exposes the claim, registration, resolution, and preference operations
// consumed by the API handlers.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cashback-id/internal/circuitbreaker"
	apperrors "github.com/cashback-id/internal/errors"
	"github.com/cashback-id/internal/logging"
	"github.com/cashback-id/internal/names"
	"github.com/cashback-id/internal/registrar"
	"github.com/cashback-id/internal/types"
	"github.com/cashback-id/internal/validate"
)

// OnChainRegistrar is the narrow contract toward the external registry.
// Register returns a transaction hash or an error; the hash alone decides
// success.
type OnChainRegistrar interface {
	Register(ctx context.Context, label string) (string, error)
	Status() registrar.Status
}

// ResolveCache is an optional read-through cache for resolved preference
// records. Misses and failures are equivalent; writes invalidate.
type ResolveCache interface {
	Get(ctx context.Context, fullName string) (*types.Preferences, bool)
	Set(ctx context.Context, fullName string, prefs *types.Preferences)
	Invalidate(ctx context.Context, fullName string)
}

// NameService orchestrates name allocation and its on-chain projection.
type NameService struct {
	store     *names.Store
	registrar OnChainRegistrar
	breaker   *circuitbreaker.CircuitBreaker
	cache     ResolveCache // nil when no cache is configured
	logger    *logging.Logger
}

// NewNameService creates a new name service. cache may be nil.
func NewNameService(store *names.Store, reg OnChainRegistrar, cache ResolveCache, logger *logging.Logger) *NameService {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &NameService{
		store:     store,
		registrar: reg,
		breaker:   circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("registrar"), logger),
		cache:     cache,
		logger:    logger.WithField("component", "service"),
	}
}

// callRegistrar sends the registration through the circuit breaker so a dead
// RPC endpoint fails fast instead of stalling every claim. A registrar that
// is disabled by configuration already fails fast, and its reason is more
// useful than ErrCircuitOpen, so it bypasses the breaker.
func (s *NameService) callRegistrar(ctx context.Context, label string) (string, error) {
	if !s.registrar.Status().Ready {
		return s.registrar.Register(ctx, label)
	}

	var txHash string
	err := s.breaker.Execute(ctx, func() error {
		var err error
		txHash, err = s.registrar.Register(ctx, label)
		return err
	})
	return txHash, err
}

// RegistrarStatus exposes the collaborator diagnostics.
func (s *NameService) RegistrarStatus() registrar.Status {
	return s.registrar.Status()
}

// ClaimInput represents input for claiming a subdomain
type ClaimInput struct {
	OwnerKey       string `json:"ownerKey"`
	PreferredLabel string `json:"preferredLabel,omitempty"`
}

// ClaimResult represents the outcome of a claim. Allocation and on-chain
// registration are reported separately: a claimed name with a failed
// registration is still claimed.
type ClaimResult struct {
	FullName     string `json:"fullName"`
	Label        string `json:"label"`
	Existing     bool   `json:"existing"`
	Registration types.RegistrationStatus
}

// Claim allocates a name for the owner key and best-effort registers it
// on-chain. An existing allocation is returned as-is, but registration is
// still attempted: that repair path covers names claimed before on-chain
// registration was enabled, or whose earlier registration failed.
// Registration failure never rolls back an allocation.
func (s *NameService) Claim(ctx context.Context, input *ClaimInput) (*ClaimResult, error) {
	ownerKey := strings.TrimSpace(input.OwnerKey)
	if len(ownerKey) < 10 {
		return nil, apperrors.NewInvalidOwnerKeyError("ownerKey is required and must be a valid address")
	}

	if existing, ok := s.store.GetEntry(ownerKey); ok {
		result := &ClaimResult{
			FullName: existing.FullName,
			Label:    existing.Label,
			Existing: true,
		}
		result.Registration = s.register(ctx, existing.Label)
		return result, nil
	}

	entry, err := s.store.Claim(ownerKey, input.PreferredLabel)
	if err != nil {
		// No registration attempt for a label that was never allocated.
		// Too-short and taken share the conflict status but carry distinct
		// reasons so clients know whether retrying the same label can help.
		if errors.Is(err, names.ErrLabelTooShort) {
			return nil, apperrors.NewLabelTooShortError(names.NormalizeLabel(input.PreferredLabel))
		}
		return nil, apperrors.NewLabelTakenError(names.NormalizeLabel(input.PreferredLabel))
	}

	result := &ClaimResult{
		FullName: entry.FullName,
		Label:    entry.Label,
	}
	result.Registration = s.register(ctx, entry.Label)
	return result, nil
}

// register attempts on-chain registration and reports the outcome as data.
// Errors (including collaborator timeouts) are never fatal here.
func (s *NameService) register(ctx context.Context, label string) types.RegistrationStatus {
	txHash, err := s.callRegistrar(ctx, label)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"label": label,
			"error": err.Error(),
		}).Warn("On-chain registration failed, allocation kept")
		return types.RegistrationStatus{Error: err.Error()}
	}
	return types.RegistrationStatus{RegisteredOnChain: true, TxHash: txHash}
}

// RegisterInput represents input for the explicit registration retry path.
type RegisterInput struct {
	Label          string `json:"label"`
	AllowUnclaimed bool   `json:"allowUnclaimed,omitempty"`
}

// RegisterResult represents a successful on-chain registration.
type RegisterResult struct {
	FullName          string `json:"fullName"`
	Label             string `json:"label"`
	TxHash            string `json:"txHash"`
	RegisteredOnChain bool   `json:"registeredOnChain"`
}

// RegisterOnChain re-attempts registration for an already-allocated label
// without re-running allocation. AllowUnclaimed bypasses the allocation
// check for testing against the live registry.
func (s *NameService) RegisterOnChain(ctx context.Context, input *RegisterInput) (*RegisterResult, error) {
	label := names.NormalizeLabel(input.Label)
	if len(label) < 3 {
		return nil, apperrors.NewInvalidLabelError("label is required (min 3 chars, only a-z 0-9 - _)")
	}

	fullName := s.store.FullName(label)
	if !input.AllowUnclaimed && !s.store.IsManagedName(fullName) {
		return nil, apperrors.NewNotClaimedError(fullName)
	}

	txHash, err := s.callRegistrar(ctx, label)
	if err != nil {
		return nil, apperrors.NewRegistrationFailedError(fullName, err)
	}

	return &RegisterResult{
		FullName:          fullName,
		Label:             label,
		TxHash:            txHash,
		RegisteredOnChain: true,
	}, nil
}

// ResolveResult carries the merged preference record for a managed name.
type ResolveResult struct {
	FullName    string
	Preferences *types.Preferences
}

// Resolve maps a name to its settlement preferences with a three-way
// outcome: invalid/out-of-namespace input, allocated-but-unconfigured
// (NO_PREFERENCES), and a present record. Callers must not collapse the
// first two.
func (s *NameService) Resolve(ctx context.Context, name string) (*ResolveResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return nil, apperrors.NewInvalidParameterError("name", "name is required")
	}
	if !strings.HasSuffix(normalized, "."+s.store.ParentName()) {
		return nil, apperrors.NewInvalidParameterError("name", "only "+s.store.ParentName()+" subdomains can be resolved here")
	}

	if !s.store.IsManagedName(normalized) {
		return nil, apperrors.NewNotFoundError("subdomain", normalized)
	}

	if s.cache != nil {
		if prefs, ok := s.cache.Get(ctx, normalized); ok {
			return &ResolveResult{FullName: normalized, Preferences: prefs}, nil
		}
	}

	prefs, ok := s.store.GetPreferences(normalized)
	if !ok {
		return nil, apperrors.NewNoPreferencesError(normalized)
	}

	if s.cache != nil {
		s.cache.Set(ctx, normalized, prefs)
	}
	return &ResolveResult{FullName: normalized, Preferences: prefs}, nil
}

// SetPreferencesInput represents input for a preference write. FullName
// wins when it names a managed subdomain; otherwise OwnerKey must validate
// and already hold a claim.
type SetPreferencesInput struct {
	FullName    string             `json:"fullName,omitempty"`
	OwnerKey    string             `json:"ownerKey,omitempty"`
	Preferences *types.Preferences `json:"preferences"`
}

// SetPreferencesResult represents a stored preference write.
type SetPreferencesResult struct {
	FullName string `json:"fullName"`
	Saved    bool   `json:"saved"`
}

// SetPreferences merges the given partial record into the target name's
// stored preferences.
func (s *NameService) SetPreferences(ctx context.Context, input *SetPreferencesInput) (*SetPreferencesResult, error) {
	target := ""

	name := strings.ToLower(strings.TrimSpace(input.FullName))
	if name != "" && strings.HasSuffix(name, "."+s.store.ParentName()) && s.store.IsManagedName(name) {
		target = name
	} else if ownerKey := strings.TrimSpace(input.OwnerKey); ownerKey != "" {
		if err := validate.SettlementAddress(ownerKey); err != nil {
			return nil, apperrors.NewInvalidOwnerKeyError(err.Error())
		}
		entry, ok := s.store.GetEntry(ownerKey)
		if !ok {
			return nil, apperrors.NewNotClaimedError(ownerKey)
		}
		target = entry.FullName
	}

	if target == "" {
		return nil, apperrors.NewInvalidParameterError("fullName", "provide fullName (your subdomain) or ownerKey to save preferences")
	}

	s.store.SetPreferences(target, input.Preferences)
	if s.cache != nil {
		s.cache.Invalidate(ctx, target)
	}
	return &SetPreferencesResult{FullName: target, Saved: true}, nil
}
