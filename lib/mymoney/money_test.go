package mymoney

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	testCases := []struct {
		amount string
		minor  int64
	}{
		{amount: "12345.67", minor: 1234567},
		{amount: "15000", minor: 1500000},
		{amount: "0", minor: 0},
		{amount: "19.999", minor: 2000},
		{amount: "10.005", minor: 1001},
		{amount: "10.004", minor: 1000},
		{amount: "0.1", minor: 10},
	}
	for _, tc := range testCases {
		t.Run(tc.amount, func(t *testing.T) {
			assert.Equal(t, tc.minor, ToMinorUnits(decimal.RequireFromString(tc.amount)))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "NGN 12345.67", Format(decimal.RequireFromString("12345.67"), "NGN"))
	assert.Equal(t, "EUR 150.00", FormatMinorUnits(15000, "EUR"))
	assert.True(t, decimal.RequireFromString("123.45").Equal(FromMinorUnits(12345)))
}
