// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/madhouse/internal/platform/sec"
)

func TestPasswordHasher_HashAndCompare(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	second, err := hasher.Hash("correct horse")
	require.NoError(t, err)

	// Fresh salt per call
	assert.NotEqual(t, first, second)

	assert.True(t, hasher.Compare("correct horse", first))
	assert.True(t, hasher.Compare("correct horse", second))
	assert.False(t, hasher.Compare("wrong horse", first))
	assert.False(t, hasher.Compare("correct horse", "not-a-hash"))
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := sec.GenerateOTP(sec.DefaultOTPLength)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', code)
		}
	}

	_, err := sec.GenerateOTP(0)
	assert.Error(t, err)
}
