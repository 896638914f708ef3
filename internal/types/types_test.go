package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_IsEmpty(t *testing.T) {
	var nilPrefs *Preferences
	assert.True(t, nilPrefs.IsEmpty())
	assert.True(t, (&Preferences{}).IsEmpty())

	asset := "USDC"
	assert.False(t, (&Preferences{Asset: &asset}).IsEmpty())

	threshold := 0.0
	// A zero value is still "set".
	assert.False(t, (&Preferences{SweepThreshold: &threshold}).IsEmpty())
}

func TestPreferences_Merge(t *testing.T) {
	chainID := int64(8453)
	asset := "USDC"
	base := &Preferences{ChainID: &chainID, Asset: &asset}

	newChain := int64(42161)
	pool := "aave-v3"
	base.Merge(&Preferences{ChainID: &newChain, Pool: &pool})

	assert.Equal(t, int64(42161), *base.ChainID)
	assert.Equal(t, "USDC", *base.Asset)
	assert.Equal(t, "aave-v3", *base.Pool)
	assert.Nil(t, base.SettlementAddress)

	// Merging nil is a no-op.
	base.Merge(nil)
	assert.Equal(t, "USDC", *base.Asset)
}

func TestPreferences_Clone(t *testing.T) {
	asset := "USDC"
	original := &Preferences{Asset: &asset}

	clone := original.Clone()
	require.NotNil(t, clone)

	mutated := "DAI"
	clone.Asset = &mutated
	assert.Equal(t, "USDC", *original.Asset)

	var nilPrefs *Preferences
	assert.Nil(t, nilPrefs.Clone())
}

func TestPreferences_SparseJSON(t *testing.T) {
	asset := "USDC"
	data, err := json.Marshal(&Preferences{Asset: &asset})
	require.NoError(t, err)

	// Unset fields are omitted from the stored form.
	assert.JSONEq(t, `{"asset":"USDC"}`, string(data))
}

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{Code: "NOT_FOUND", Message: "subdomain not found"}
	assert.Equal(t, "NOT_FOUND: subdomain not found", err.Error())
}
