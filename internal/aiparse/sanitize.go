package aiparse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var intMoney = []string{"total_amount", "subtotal", "discount"}

// SanitizeReceiptPayload normalizes a generative payload so it can pass the
// strict schema: decimal or string amounts become integers, the discount sign
// is forced negative, the currency code is uppercased, and optional fields
// that cannot be repaired are dropped rather than failing the whole document.
func SanitizeReceiptPayload(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string

	if v, ok := m["currency"].(string); ok {
		m["currency"] = strings.ToUpper(strings.TrimSpace(v))
	}

	for _, k := range intMoney {
		v, ok := m[k]
		if !ok {
			continue
		}
		n, ok := coerceInt(v)
		if !ok {
			delete(m, k)
			dropped = append(dropped, k)
			continue
		}
		if k == "discount" && n > 0 {
			n = -n
		}
		m[k] = n
	}

	if items, ok := m["items"].([]any); ok {
		kept := make([]any, 0, len(items))
		for _, raw := range items {
			it, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			total, ok := coerceInt(it["total_price"])
			if !ok {
				continue
			}
			it["total_price"] = total
			if q, ok := coerceInt(it["quantity"]); ok && q >= 1 {
				it["quantity"] = q
			} else {
				it["quantity"] = 1
			}
			if u, ok := coerceInt(it["unit_price"]); ok {
				it["unit_price"] = u
			} else {
				delete(it, "unit_price")
			}
			kept = append(kept, it)
		}
		m["items"] = kept
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return int(math.Floor(t + 0.5)), true
		}
		return int(t), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if s == "" || strings.EqualFold(s, "null") {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(math.Floor(f + 0.5)), true
		}
		return 0, false
	default:
		return 0, false
	}
}
