package supply

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcentration(t *testing.T) {
	require.Equal(t, 20.0, Concentration(1000, []float64{100, 50, 50}))
	require.Equal(t, 0.0, Concentration(0, []float64{100, 50, 50}))
	require.Equal(t, 0.0, Concentration(-5, []float64{1}))
	require.Equal(t, 0.0, Concentration(1000, nil))
	require.Equal(t, 33.33, Concentration(3, []float64{1}))
	require.Equal(t, 66.67, Concentration(3, []float64{2}))
}

func TestConcentration_NotClamped(t *testing.T) {
	require.Equal(t, 150.0, Concentration(100, []float64{100, 50}))
}

func TestBucketFor(t *testing.T) {
	cases := []struct {
		pct  float64
		want Bucket
	}{
		{0, BucketLow},
		{9.99, BucketLow},
		{10, BucketModerate},
		{24.5, BucketModerate},
		{25, BucketHigh},
		{49.99, BucketHigh},
		{50, BucketExtreme},
		{180, BucketExtreme},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, BucketFor(tc.pct), "pct=%v", tc.pct)
	}
}

func TestRubric_ListsEveryBucket(t *testing.T) {
	r := Rubric()
	require.Contains(t, r, "- low (0% to 10%)")
	require.Contains(t, r, "- moderate (10% to 25%)")
	require.Contains(t, r, "- high (25% to 50%)")
	require.Contains(t, r, "- extreme (50% and above)")
}
