package integration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorIdentityFromNo(t *testing.T) {
	t.Run("known identifier", func(t *testing.T) {
		id, err := VendorIdentityFromNo("PRV000069")
		require.NoError(t, err)
		assert.Equal(t, "10326524-b1eb-3c53-bfab-792d11a135b0", id.String())
	})

	t.Run("normalizes case and spaces", func(t *testing.T) {
		a, err := VendorIdentityFromNo(" prv000069 ")
		require.NoError(t, err)
		b, err := VendorIdentityFromNo("PRV000069")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("distinct vendors differ", func(t *testing.T) {
		a, err := VendorIdentityFromNo("V1")
		require.NoError(t, err)
		assert.Equal(t, "f4d8169f-a1d7-e753-a104-49a1e476485c", a.String())

		b, err := VendorIdentityFromNo("V2")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("blank rejected", func(t *testing.T) {
		id, err := VendorIdentityFromNo("   ")
		assert.ErrorIs(t, err, ErrVendorNoRequired)
		assert.Equal(t, uuid.Nil, id)
	})
}

func TestGuidLayout_IsInvolution(t *testing.T) {
	u := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	swapped := guidLayout(u)
	assert.Equal(t, "33221100-5544-7766-8899-aabbccddeeff", swapped.String())
	assert.Equal(t, u, guidLayout(swapped))
}
