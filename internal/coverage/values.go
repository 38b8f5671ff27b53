package coverage

import (
	"math"
	"strconv"
	"strings"
)

// maxRoundableFloat is the largest float that still fits an int64 after
// rounding to the nearest hundred.
const maxRoundableFloat = 9.2e18

// Round100 rounds v to the nearest hundred, ties to even. Values below 100 are
// returned unchanged, as are values whose rounded form would overflow int64.
func Round100(v int64) int64 {
	if v < 100 {
		return v
	}
	q, r := v/100, v%100
	if r > 50 || (r == 50 && q%2 == 1) {
		q++
	}
	if q > math.MaxInt64/100 {
		return v
	}
	return q * 100
}

func roundFloat100(f float64) Node {
	if f < 100 || f >= maxRoundableFloat {
		return Float(f)
	}
	return Integer(int64(math.RoundToEven(f/100)) * 100)
}

// normalizeValues rounds numeric leaves and numeric-looking strings. A leaf
// sitting directly under a Year key is left alone. List elements inherit the
// key of the list.
func normalizeValues(n Node, parentKey string) Node {
	switch t := n.(type) {
	case Object:
		out := make(Object, 0, len(t))
		for _, m := range t {
			out = append(out, Member{Key: m.Key, Value: normalizeValues(m.Value, m.Key)})
		}
		return out
	case List:
		out := make(List, 0, len(t))
		for _, v := range t {
			out = append(out, normalizeValues(v, parentKey))
		}
		return out
	}
	if parentKey == KeyYear {
		return n
	}
	switch t := n.(type) {
	case Integer:
		return Integer(Round100(int64(t)))
	case Float:
		return roundFloat100(float64(t))
	case Text:
		return normalizeText(string(t))
	default:
		return n
	}
}

// normalizeText turns "$1,234" style strings into rounded integers. Anything
// that is not all digits after cleanup comes back as the original string.
func normalizeText(s string) Node {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if !isDigits(cleaned) {
		return Text(s)
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return Text(s)
	}
	return Integer(Round100(v))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
