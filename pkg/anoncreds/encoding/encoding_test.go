/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/anoncreds-go/pkg/anoncreds/encoding"
)

func TestEncode(t *testing.T) {
	t.Run("integers", func(t *testing.T) {
		require.Equal(t, "30", encoding.Encode("30"))
		require.Equal(t, "-12", encoding.Encode("-12"))
		require.Equal(t, "7", encoding.Encode("007"))
		require.Equal(t, "2147483647", encoding.Encode("2147483647"))
		require.Equal(t, "-2147483648", encoding.Encode("-2147483648"))
	})

	t.Run("hashed", func(t *testing.T) {
		// SHA-256("Alice") as a decimal integer
		require.Equal(t,
			"27034640024117331033063128044004318218486816931520886405535659934417438781507",
			encoding.Encode("Alice"))

		outOfRange := encoding.Encode("2147483648")
		require.NotEqual(t, "2147483648", outOfRange)

		require.NotEqual(t, encoding.Encode(""), encoding.Encode(" "))
		require.NotEqual(t, encoding.Encode("1.5"), "1.5")
	})

	t.Run("stable", func(t *testing.T) {
		raw := []string{"Alice", "30", "", "Bob"}
		first := encoding.EncodeAll(raw)
		require.Equal(t, first, encoding.EncodeAll(raw))
		require.Len(t, first, len(raw))
		require.Equal(t, encoding.Encode("Bob"), first[3])
		require.NotEqual(t, first[0], first[3])
	})
}

func TestInt32(t *testing.T) {
	v, ok := encoding.Int32("+42")
	require.True(t, ok)
	require.Equal(t, int32(42), v)

	for _, raw := range []string{"", " 1", "1 ", "0x10", "2147483648", "-2147483649", "1e3"} {
		_, ok = encoding.Int32(raw)
		require.False(t, ok, raw)
	}
}
