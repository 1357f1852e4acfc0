// Package supply computes how much of a token's supply moved in its earliest
// transfers and how to read that number.
package supply

import (
	"fmt"
	"math"
	"strings"
)

// Concentration returns the summed amounts as a percentage of total, rounded
// to two decimals. A non-positive total yields 0. The result is not clamped:
// inconsistent provider data can push it above 100.
func Concentration(total float64, amounts []float64) float64 {
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	return round2(sum / total * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Bucket is a coarse risk reading of a concentration percentage.
type Bucket string

const (
	BucketLow      Bucket = "low"
	BucketModerate Bucket = "moderate"
	BucketHigh     Bucket = "high"
	BucketExtreme  Bucket = "extreme"
)

var buckets = []struct {
	upper   float64
	bucket  Bucket
	meaning string
}{
	{10, BucketLow, "supply is widely distributed from launch"},
	{25, BucketModerate, "a handful of early wallets hold a noticeable share"},
	{50, BucketHigh, "early wallets can move the price on their own"},
	{math.Inf(1), BucketExtreme, "early wallets control the token; treat as high rug risk"},
}

// BucketFor classifies pct.
func BucketFor(pct float64) Bucket {
	for _, b := range buckets {
		if pct < b.upper {
			return b.bucket
		}
	}
	return BucketExtreme
}

// Rubric renders the bucket table for inclusion in a system prompt.
func Rubric() string {
	lines := make([]string, 0, len(buckets)+1)
	lines = append(lines, "Supply concentration rubric (share of supply moved in the earliest transfers):")
	lower := 0.0
	for _, b := range buckets {
		if math.IsInf(b.upper, 1) {
			lines = append(lines, fmt.Sprintf("- %s (%.0f%% and above): %s", b.bucket, lower, b.meaning))
			break
		}
		lines = append(lines, fmt.Sprintf("- %s (%.0f%% to %.0f%%): %s", b.bucket, lower, b.upper, b.meaning))
		lower = b.upper
	}
	return strings.Join(lines, "\n")
}
