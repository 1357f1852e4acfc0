package format

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMagnitude(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{12.5, "12.5"},
		{1000, "1.00K"},
		{1500, "1.50K"},
		{2_300_000, "2.30M"},
		{7_100_000_000, "7.10B"},
		{4_200_000_000_000, "4.20T"},
		{-1500, "-1.50K"},
		{math.NaN(), "0"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Magnitude(tc.in), "in=%v", tc.in)
	}
}

func TestTimestamp_Valid(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{int64(0), "1970-01-01 00:00:00 UTC"},
		{int64(1700000000), "2023-11-14 22:13:20 UTC"},
		{1700000000, "2023-11-14 22:13:20 UTC"},
		{float64(1700000000), "2023-11-14 22:13:20 UTC"},
		{"1700000000", "2023-11-14 22:13:20 UTC"},
		{json.Number("1700000000"), "2023-11-14 22:13:20 UTC"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Timestamp(tc.in), "in=%v", tc.in)
	}
}

func TestTimestamp_Unknown(t *testing.T) {
	cases := []any{
		nil,
		"yesterday",
		"",
		true,
		map[string]any{},
		math.Inf(1),
		math.NaN(),
		float64(1e300),
		int64(math.MaxInt64),
		int64(1e15),
	}
	for _, in := range cases {
		require.Equal(t, "Unknown", Timestamp(in), "in=%v", in)
	}
}
