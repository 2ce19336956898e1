package products

import (
	"encoding/json"
	"strconv"
	"strings"
)

// normalizePrice reduces the service's varying price shapes to a single number,
// or nil. Recognized shapes: an object with extracted_value (or a value string),
// a plain string like "$42.50", a bare number, and a price-looking string inside
// the extensions list. Anything unrecognized degrades to nil, never an error.
func normalizePrice(raw json.RawMessage, extensions []any) *float64 {
	if len(raw) > 0 {
		if p := priceFromRaw(raw); p != nil {
			return p
		}
	}

	for _, ext := range extensions {
		s, ok := ext.(string)
		if !ok {
			continue
		}

		if p := priceFromString(s); p != nil {
			return p
		}
	}

	return nil
}

func priceFromRaw(raw json.RawMessage) *float64 {
	var obj struct {
		ExtractedValue *float64 `json:"extracted_value"`
		Value          string   `json:"value"`
	}

	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.ExtractedValue != nil {
			return obj.ExtractedValue
		}

		if obj.Value != "" {
			return priceFromString(obj.Value)
		}
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return priceFromString(s)
	}

	return nil
}

// priceFromString pulls the first decimal number out of a price string,
// tolerating currency symbols and thousands separators ("$1,299.00*" => 1299).
func priceFromString(s string) *float64 {
	s = strings.ReplaceAll(s, ",", "")

	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			start = i

			break
		}
	}

	if start < 0 {
		return nil
	}

	end := start
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++

			continue
		}

		if c == '.' && !seenDot {
			seenDot = true
			end++

			continue
		}

		break
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(s[start:end], "."), 64)
	if err != nil {
		return nil
	}

	return &v
}
