package aiparse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

// TextParser is the interface the fallback chain depends on for the
// AI-assisted strategy. The raw JSON payload is returned alongside the decoded
// receipt for diagnostics.
type TextParser interface {
	ExtractReceipt(ctx context.Context, ocrText string) (engine.ParsedReceipt, []byte, error)
}

// DecodeReceiptPayload turns a schema-valid payload into a ParsedReceipt,
// applying the engine's invariants the schema cannot express.
func DecodeReceiptPayload(raw []byte, defaultCurrency string, maxItems int) (engine.ParsedReceipt, error) {
	var r engine.ParsedReceipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return engine.ParsedReceipt{}, fmt.Errorf("unmarshal receipt payload: %w", err)
	}
	if r.Items == nil {
		r.Items = []engine.LineItem{}
	}
	if len(r.Items) > maxItems {
		r.Items = r.Items[:maxItems]
	}
	for i := range r.Items {
		if r.Items[i].Quantity < 1 {
			r.Items[i].Quantity = 1
		}
	}
	if r.Discount != nil && *r.Discount > 0 {
		d := -*r.Discount
		r.Discount = &d
	}
	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
	return r, nil
}
