package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Monetary extractors scan every line for a label-anchored amount: a known
// label token, an optional currency glyph, and a digit group with optional
// thousands separators. Amounts parse to integer yen.

var (
	reTotalAmount    = regexp.MustCompile(`(?:総合計|合計|TOTAL|Total)\s*[:：]?\s*[¥￥]?\s*([0-9][0-9,]*)`)
	reSubtotalAmount = regexp.MustCompile(`(?:小計|SUBTOTAL|Subtotal)\s*[:：]?\s*[¥￥]?\s*([0-9][0-9,]*)`)
	reDiscountAmount = regexp.MustCompile(`(?:割引|値引き?|クーポン|COUPON|Coupon|DISCOUNT|Discount)\s*[:：]?\s*[-−▲]?\s*[¥￥]?\s*-?([0-9][0-9,]*)`)
	reSubtotalLabel  = regexp.MustCompile(`小計|SUBTOTAL|Subtotal`)
	reYenAmount      = regexp.MustCompile(`[¥￥]\s*([0-9][0-9,]*)`)
)

func parseAmount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// extractTotal prefers a labeled total. When no label matches and the
// unlabeled fallback is enabled, fallbackTotal supplies a last-resort guess.
func extractTotal(lines []string, cfg Config) *int {
	for _, l := range lines {
		if reSubtotalLabel.MatchString(l) {
			// "SUBTOTAL" contains "TOTAL"; never read a subtotal line as the total.
			continue
		}
		m := reTotalAmount.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		if n, ok := parseAmount(m[1]); ok {
			return &n
		}
	}
	if cfg.DisableUnlabeledTotal {
		return nil
	}
	return fallbackTotal(lines, cfg.TotalCeiling)
}

// fallbackTotal is a deliberate heuristic trade-off favoring some answer over
// none: the maximum currency-prefixed amount under the ceiling across all
// lines. It misfires on receipts whose largest currency line is a single big
// item rather than the total, which is why it is a named, separately testable
// function behind Config.DisableUnlabeledTotal.
func fallbackTotal(lines []string, ceiling int) *int {
	var best *int
	for _, l := range lines {
		if reSubtotalLabel.MatchString(l) {
			continue
		}
		for _, m := range reYenAmount.FindAllStringSubmatch(l, -1) {
			n, ok := parseAmount(m[1])
			if !ok || n >= ceiling {
				continue
			}
			if best == nil || n > *best {
				v := n
				best = &v
			}
		}
	}
	return best
}

func extractSubtotal(lines []string) *int {
	for _, l := range lines {
		m := reSubtotalAmount.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		if n, ok := parseAmount(m[1]); ok {
			return &n
		}
	}
	return nil
}

// extractDiscount stores the amount as a negative number by convention.
func extractDiscount(lines []string) *int {
	for _, l := range lines {
		m := reDiscountAmount.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		if n, ok := parseAmount(m[1]); ok {
			d := -n
			return &d
		}
	}
	return nil
}

// hasMonetaryLabel reports whether a line restates a total, subtotal, or
// discount; such lines are never line-item candidates.
func hasMonetaryLabel(l string) bool {
	return reTotalAmount.MatchString(l) ||
		reSubtotalAmount.MatchString(l) ||
		reDiscountAmount.MatchString(l)
}
