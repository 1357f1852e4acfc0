package solscan

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// number decodes a JSON number or numeric string. Anything else, including
// null and non-finite values, decodes as zero rather than failing the payload.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*n = 0
		return nil
	}
	*n = toNumber(v)
	return nil
}

func (n number) Float64() float64 {
	return float64(n)
}

// Int64 truncates toward zero; values beyond exact float precision are zero.
func (n number) Int64() int64 {
	f := float64(n)
	if math.Abs(f) > 1<<53 {
		return 0
	}
	return int64(f)
}

func toNumber(v any) number {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return number(f)
}
