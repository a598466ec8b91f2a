package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		input   string
		want    Network
		wantErr bool
	}{
		{"mainnet", NetworkMainnet, false},
		{"devnet", NetworkDevnet, false},
		{"testnet", "", true},
		{"", "", true},
		{"Mainnet", "", true},
	}

	for _, tt := range tests {
		got, err := ParseNetwork(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	k1 := CacheKey(NetworkMainnet, "BPFLoaderUpgradeab1e11111111111111111111111")
	k2 := CacheKey(NetworkMainnet, "BPFLoaderUpgradeab1e11111111111111111111111")
	assert.Equal(t, k1, k2)

	// Different network, same program: distinct keys.
	k3 := CacheKey(NetworkDevnet, "BPFLoaderUpgradeab1e11111111111111111111111")
	assert.NotEqual(t, k1, k3)
}

func TestDeploymentRecord_Time(t *testing.T) {
	rec := DeploymentRecord{Signature: "sig", Timestamp: 1630000000}
	assert.Equal(t, time.Unix(1630000000, 0).UTC(), rec.Time())
	assert.Equal(t, time.UTC, rec.Time().Location())
}
