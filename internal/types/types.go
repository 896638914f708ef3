// Package types provides common type definitions for the Cashback ID name service.
package types

import "time"

// SubdomainEntry represents one allocated name under the managed parent namespace.
// Entries are created once per owner key and never mutated or deleted.
type SubdomainEntry struct {
	// FullName is the globally addressable name: label + "." + parent namespace.
	FullName string `json:"fullName"`
	// Label is the allocable short name component before the parent suffix.
	Label string `json:"label"`
	// CreatedAt is the allocation timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// Preferences is the sparse payment-routing record attached to a full name.
// Absent fields are "unset", not defaulted; writes merge field by field.
type Preferences struct {
	ChainID           *int64   `json:"chainId,omitempty"`
	Asset             *string  `json:"asset,omitempty"`
	Pool              *string  `json:"pool,omitempty"`
	SettlementAddress *string  `json:"settlementAddress,omitempty"`
	SweepThreshold    *float64 `json:"sweepThreshold,omitempty"`
	ProfileID         *string  `json:"profileId,omitempty"`
}

// IsEmpty reports whether no field has ever been set.
func (p *Preferences) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.ChainID == nil && p.Asset == nil && p.Pool == nil &&
		p.SettlementAddress == nil && p.SweepThreshold == nil && p.ProfileID == nil
}

// Merge overlays the set fields of other onto p, leaving unset fields untouched.
func (p *Preferences) Merge(other *Preferences) {
	if other == nil {
		return
	}
	if other.ChainID != nil {
		p.ChainID = other.ChainID
	}
	if other.Asset != nil {
		p.Asset = other.Asset
	}
	if other.Pool != nil {
		p.Pool = other.Pool
	}
	if other.SettlementAddress != nil {
		p.SettlementAddress = other.SettlementAddress
	}
	if other.SweepThreshold != nil {
		p.SweepThreshold = other.SweepThreshold
	}
	if other.ProfileID != nil {
		p.ProfileID = other.ProfileID
	}
}

// Clone returns a deep copy so callers can never mutate stored state.
func (p *Preferences) Clone() *Preferences {
	if p == nil {
		return nil
	}
	out := &Preferences{}
	out.Merge(p)
	return out
}

// RegistrationStatus reports the on-chain projection of a local allocation.
// Allocation is the source of truth; registration may lag or never complete.
type RegistrationStatus struct {
	RegisteredOnChain bool   `json:"registeredOnChain"`
	TxHash            string `json:"txHash,omitempty"`
	Error             string `json:"onChainError,omitempty"`
}

// TransferStatus represents the state of a cross-chain transfer as reported
// by the routing service.
type TransferStatus string

const (
	// TransferPending means the transfer was submitted but not picked up yet.
	TransferPending TransferStatus = "PENDING"
	// TransferStarted means the transfer is in flight.
	TransferStarted TransferStatus = "STARTED"
	// TransferActionRequired means the user must act before it can proceed.
	TransferActionRequired TransferStatus = "ACTION_REQUIRED"
	// TransferDone means funds arrived on the destination chain.
	TransferDone TransferStatus = "DONE"
	// TransferFailed means the transfer failed.
	TransferFailed TransferStatus = "FAILED"
	// TransferNotFound means the routing service has no record of the hash.
	TransferNotFound TransferStatus = "NOT_FOUND"
)

// ProofStatus represents the settlement state of a cashback proof.
type ProofStatus string

const (
	// ProofPending means the cashback was earned but not yet settled.
	ProofPending ProofStatus = "pending"
	// ProofSettled means the cashback reached the settlement address.
	ProofSettled ProofStatus = "settled"
)

// ServiceError represents a structured error from the service layer.
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}
