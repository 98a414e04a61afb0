// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// DefaultOTPLength is the number of digits in a recovery code.
const DefaultOTPLength = 6

var ten = big.NewInt(10)

// GenerateOTP returns a numeric code of the given length. Every digit is drawn
// independently and uniformly from 0-9, so leading zeros are possible.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("sec: invalid otp length %d", length)
	}

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		digit, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("sec: failed to read random digit: %w", err)
		}
		builder.WriteByte(byte('0' + digit.Int64()))
	}

	return builder.String(), nil
}
