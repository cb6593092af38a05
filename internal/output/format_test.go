// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"apache", 15, "apache"},
		{"exactly15chars!", 15, "exactly15chars!"},
		{"averyveryverylongvendorname", 15, "averyveryver..."},
		{"an_extremely_long_product_name", 20, "an_extremely_long..."},
		{"", 15, ""},
		{"münchen-münchen-münchen", 10, "münchen..."},
		{"abcdef", 3, "..."},
		{"abcdef", 2, ".."},
		{"abcdef", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Truncate(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), max(tt.limit, 0))
		})
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "10.0", FormatScore(10))
	assert.Equal(t, "9.8", FormatScore(9.8))
	assert.Equal(t, "0.97", FormatScore(0.97))
	assert.Equal(t, "0.00043", FormatScore(0.00043))
	assert.Equal(t, "0.0", FormatScore(0))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
}
