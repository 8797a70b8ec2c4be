package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEthereumAddress(t *testing.T) {
	t.Run("ValidAddresses", func(t *testing.T) {
		validAddresses := []string{
			"0x1234567890123456789012345678901234567890",
			"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
			"0x0b3e328455c4059EEb9e3f84b5543F74E24e7E1b", // VIRTUAL on Base
		}

		for _, addr := range validAddresses {
			assert.True(t, IsValidEthereumAddress(addr), "Address should be valid: %s", addr)
		}
	})

	t.Run("InvalidAddresses", func(t *testing.T) {
		invalidAddresses := []string{
			"",
			"0x123",
			"0x12345678901234567890123456789012345678901",
			"0xGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGG",
			"not-an-address",
		}

		for _, addr := range invalidAddresses {
			assert.False(t, IsValidEthereumAddress(addr), "Address should be invalid: %s", addr)
		}
	})
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	require.NoError(t, err)
	assert.Equal(t, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", got)

	_, err = NormalizeAddress("0x123")
	assert.Error(t, err)
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045", "0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045"))
	assert.False(t, SameAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045", "0x1234567890123456789012345678901234567890"))
	assert.False(t, SameAddress("bad", "bad"))
}
