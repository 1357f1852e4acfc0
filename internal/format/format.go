// Package format renders provider numbers for display.
package format

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"rai-agent/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

// Bounds of four-digit years, in Unix seconds.
const (
	minUnix = -62135596800 // 0001-01-01T00:00:00Z
	maxUnix = 253402300799 // 9999-12-31T23:59:59Z
)

var magnitudes = []struct {
	threshold float64
	suffix    string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Magnitude abbreviates large values with a K/M/B/T suffix and two decimals.
// Values below one thousand are rendered as-is.
func Magnitude(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	for _, m := range magnitudes {
		if math.Abs(v) >= m.threshold {
			return strconv.FormatFloat(v/m.threshold, 'f', 2, 64) + m.suffix
		}
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Timestamp converts Unix seconds to "YYYY-MM-DD HH:MM:SS UTC". Anything that
// is not a representable number of seconds yields domain.Unknown.
func Timestamp(v any) string {
	sec, ok := seconds(v)
	if !ok || sec < minUnix || sec > maxUnix {
		return domain.Unknown
	}
	return time.Unix(sec, 0).UTC().Format(timestampLayout)
}

func seconds(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatSeconds(n)
	case json.Number:
		return textSeconds(n.String())
	case string:
		return textSeconds(n)
	default:
		return 0, false
	}
}

func textSeconds(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatSeconds(f)
}

// floatSeconds bounds the value before converting; int64 conversion of an
// out-of-range float is implementation-defined.
func floatSeconds(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
