package generator

import (
	"encoding/json"
	"strings"

	"github.com/shopthelook/scout/internal/models"
	"github.com/shopthelook/scout/internal/scouterrors"
)

// parseItems reduces a chat response to an ordered list of clothing items.
// Two-stage parse: strict decode of the whole response, then decode of the
// first [...] substring. Chat models routinely wrap the array in prose or
// markdown fences, so the fallback is part of the contract, not a nicety.
func parseItems(raw string) ([]models.ClothingItem, error) {
	if items, ok := decodeStringArray(raw); ok {
		return items, nil
	}

	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.Index(raw[start:], "]"); end > 0 {
			if items, ok := decodeStringArray(raw[start : start+end+1]); ok {
				return items, nil
			}
		}

		// A ']' inside an item string can cut the first match short; widen to the last ']'.
		if end := strings.LastIndex(raw, "]"); end > start {
			if items, ok := decodeStringArray(raw[start : end+1]); ok {
				return items, nil
			}
		}
	}

	return nil, scouterrors.NewParseError(raw, "response contains no JSON array of strings")
}

func decodeStringArray(s string) ([]models.ClothingItem, bool) {
	var strs []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &strs); err != nil {
		return nil, false
	}

	items := make([]models.ClothingItem, len(strs))
	for i, v := range strs {
		items[i] = models.ClothingItem(v)
	}

	return items, true
}
