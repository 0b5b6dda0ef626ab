package engine

import (
	"regexp"
	"strings"
)

// The line-item extractor treats every currency-bearing line whose amount
// falls inside the sanity band as a candidate purchase, then reconstructs the
// purchase from bounded look-around windows. Receipts put item name, quantity
// notation, and price on visually separated but vertically adjacent lines, and
// recognition order does not perfectly preserve left-right structure; the
// windows trade precision against recall and are tuned per layout via Config.

var (
	reProductCode = regexp.MustCompile(`(?:^|[^0-9])([0-9]{13})(?:[^0-9]|$)`)
	reQtyUnit     = regexp.MustCompile(`([0-9]+)\s*[コ個点]?\s*[×xX*]\s*(?:単価?|＠|@)?\s*([0-9][0-9,]*)`)
	reCodeToken   = regexp.MustCompile(`^[A-Z][A-Z0-9\-]*$`)
	rePunctOnly   = regexp.MustCompile(`^[\pP\pS\s]+$`)
)

func extractItems(lines []string, cfg Config) []LineItem {
	items := make([]LineItem, 0, cfg.MaxItems)
	for i, line := range lines {
		if len(items) >= cfg.MaxItems {
			break
		}
		if hasMonetaryLabel(line) {
			continue
		}
		loc := reYenAmount.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		amount, ok := parseAmount(line[loc[2]:loc[3]])
		if !ok || amount < cfg.ItemMinAmount || amount > cfg.ItemMaxAmount {
			// Out-of-band amounts are rejected as false positives, not clamped.
			continue
		}

		item := LineItem{Quantity: 1, TotalPrice: amount}

		name, keep := deriveName(lines, i, line[:loc[0]]+line[loc[1]:], cfg)
		if !keep {
			continue
		}
		item.Name = name
		item.ProductCode = findProductCode(lines, i, cfg)

		if qty, unit, found := findQuantity(lines, i, cfg); found {
			item.Quantity = qty
			item.UnitPrice = &unit
		} else {
			unit := amount
			item.UnitPrice = &unit
		}

		items = append(items, item)
	}
	return items
}

// deriveName returns the item name (possibly nil) and whether the candidate
// should be kept. The residual of the candidate line wins when it carries
// text; otherwise the nearest prior line that is not a price, a digit run, an
// uppercase code token, or punctuation becomes the name. A prior line that is
// only whitespace marks the candidate as noise (a restated amount) and
// discards it. No usable prior line at all still emits the item, nameless.
func deriveName(lines []string, idx int, residual string, cfg Config) (*string, bool) {
	res := strings.TrimSpace(residual)
	if res != "" && !rePureNumeric.MatchString(res) {
		return &res, true
	}
	for j := idx - 1; j >= 0 && j >= idx-cfg.NameBackwardWindow; j-- {
		cand := strings.TrimSpace(lines[j])
		if cand == "" {
			return nil, false
		}
		if reYenAmount.MatchString(cand) || hasMonetaryLabel(cand) {
			continue
		}
		if rePureNumeric.MatchString(cand) || reCodeToken.MatchString(cand) || rePunctOnly.MatchString(cand) {
			continue
		}
		if reQtyUnit.MatchString(cand) {
			continue
		}
		return &cand, true
	}
	return nil, true
}

// findProductCode looks for a fixed-length numeric code near the candidate
// line: first the forward window, then the backward one; first match wins.
func findProductCode(lines []string, idx int, cfg Config) *string {
	for j := idx + 1; j < len(lines) && j <= idx+cfg.CodeForwardWindow; j++ {
		if m := reProductCode.FindStringSubmatch(lines[j]); m != nil {
			return &m[1]
		}
	}
	for j := idx - 1; j >= 0 && j >= idx-cfg.CodeBackwardWindow; j-- {
		if m := reProductCode.FindStringSubmatch(lines[j]); m != nil {
			return &m[1]
		}
	}
	return nil
}

// findQuantity scans a short backward window for "N × unit price" notation
// (e.g. "2コ×単598"). The candidate line's own amount stays the total price.
func findQuantity(lines []string, idx int, cfg Config) (int, int, bool) {
	for j := idx - 1; j >= 0 && j >= idx-cfg.QtyBackwardWindow; j-- {
		m := reQtyUnit.FindStringSubmatch(lines[j])
		if m == nil {
			continue
		}
		qty, ok1 := parseAmount(m[1])
		unit, ok2 := parseAmount(m[2])
		if !ok1 || !ok2 || qty < 1 {
			continue
		}
		return qty, unit, true
	}
	return 0, 0, false
}
