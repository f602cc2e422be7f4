package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{0, "R$ 0,00"},
		{50, "R$ 0,50"},
		{5000, "R$ 50,00"},
		{123456, "R$ 1.234,56"},
		{123456789, "R$ 1.234.567,89"},
		{-5000, "-R$ 50,00"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatBRL(tc.minor), "minor units %d", tc.minor)
	}
}
