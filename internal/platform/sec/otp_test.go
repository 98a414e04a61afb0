// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/madhouse/internal/platform/sec"
)

/*
TestGenerateOTP_Shape checks length and the digit-only alphabet over many draws.
*/
func TestGenerateOTP_Shape(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]{6}$`)
	seen := map[string]struct{}{}

	for range 200 {
		code, err := sec.GenerateOTP(sec.DefaultOTPLength)
		require.NoError(t, err)
		assert.Regexp(t, digits, code)
		seen[code] = struct{}{}
	}

	// 200 draws from a million codes: collisions are possible, a constant source is not
	assert.Greater(t, len(seen), 150)
}

func TestGenerateOTP_InvalidLength(t *testing.T) {
	_, err := sec.GenerateOTP(0)
	assert.Error(t, err)
}
