package engine

import "math"

// Enrich converts every non-nil amount of r into the caller's currency at the
// supplied exchange rate, rounding half-up. Pure and side-effect-free: r is
// never mutated, nil amounts stay nil, and calling Enrich again with the same
// rate yields an identical result.
func Enrich(r ParsedReceipt, exchangeRate float64) EnrichedReceipt {
	out := EnrichedReceipt{
		StoreName:        r.StoreName,
		Date:             r.Date,
		Time:             r.Time,
		TotalAmount:      r.TotalAmount,
		TotalAmountLocal: convert(r.TotalAmount, exchangeRate),
		Subtotal:         r.Subtotal,
		SubtotalLocal:    convert(r.Subtotal, exchangeRate),
		Discount:         r.Discount,
		DiscountLocal:    convert(r.Discount, exchangeRate),
		Items:            make([]EnrichedItem, 0, len(r.Items)),
		Currency:         r.Currency,
		Confidence:       r.Confidence,
		ExchangeRate:     exchangeRate,
	}
	for _, it := range r.Items {
		local := roundHalfUp(float64(it.TotalPrice) * exchangeRate)
		out.Items = append(out.Items, EnrichedItem{
			Name:            it.Name,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			UnitPriceLocal:  convert(it.UnitPrice, exchangeRate),
			TotalPrice:      it.TotalPrice,
			TotalPriceLocal: local,
			ProductCode:     it.ProductCode,
		})
	}
	return out
}

func convert(v *int, rate float64) *int {
	if v == nil {
		return nil
	}
	n := roundHalfUp(float64(*v) * rate)
	return &n
}

// roundHalfUp rounds .5 toward positive infinity, matching the rounding the
// surrounding application expects for converted amounts.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
