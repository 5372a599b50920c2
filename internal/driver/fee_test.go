package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFee(t *testing.T) {
	cases := []struct {
		amount int64
		want   int64
	}{
		{0, 0},
		{-500, 0},
		{1, 1},       // rounds up
		{99, 1},      // still one penny
		{100, 1},     // exactly 1%
		{101, 2},     // rounds up again
		{1000, 10},   // one percent
		{19999, 200}, // just under the cap boundary, still capped
		{20000, 200}, // exactly at the cap
		{50000, 200}, // capped
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Fee(tc.amount), "fee(%d)", tc.amount)
	}
}

func TestFee_MonotonicAndCapped(t *testing.T) {
	var prev int64
	for amount := int64(0); amount <= 30000; amount += 37 {
		fee := Fee(amount)
		assert.GreaterOrEqual(t, fee, prev, "fee must not decrease at %d", amount)
		assert.LessOrEqual(t, fee, int64(200), "fee must stay capped at %d", amount)
		prev = fee
	}
}
