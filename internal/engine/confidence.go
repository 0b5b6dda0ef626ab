package engine

// scoreReceipt assigns the engine's trust score from which fields resolved.
// Simple additive heuristic, not a calibrated probability: receipts that yield
// a store, a date, a total, and items are trustworthy enough to store without
// review; sparse results are not.
func scoreReceipt(r ParsedReceipt) float32 {
	score := float32(0.2) // base
	if r.StoreName != nil {
		score += 0.15
	}
	if r.Date != nil {
		score += 0.15
	}
	if r.Time != nil {
		score += 0.05
	}
	if r.TotalAmount != nil {
		score += 0.25
	}
	if len(r.Items) > 0 {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
