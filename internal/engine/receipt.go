package engine

// LineItem is one reconstructed purchase from the receipt body.
// Quantity is always >= 1; TotalPrice is the amount on the price-bearing line
// and always falls inside the configured sanity band.
type LineItem struct {
	Name        *string `json:"name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   *int    `json:"unit_price"`
	TotalPrice  int     `json:"total_price"`
	ProductCode *string `json:"product_code"`
}

// ParsedReceipt is the engine output before currency enrichment.
// Amounts are integers in source-currency units (yen). A nil field means the
// extractor found no match; that is never an error. Discount is <= 0 when set.
type ParsedReceipt struct {
	StoreName   *string    `json:"store_name"`
	Date        *string    `json:"date"` // ISO 8601 calendar date
	Time        *string    `json:"time"` // 24h HH:MM
	TotalAmount *int       `json:"total_amount"`
	Subtotal    *int       `json:"subtotal"`
	Discount    *int       `json:"discount"`
	Items       []LineItem `json:"items"`
	Currency    string     `json:"currency"`
	Confidence  float32    `json:"confidence"`
}

// EnrichedItem is a LineItem with its prices converted to the caller's
// currency.
type EnrichedItem struct {
	Name            *string `json:"name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       *int    `json:"unit_price"`
	UnitPriceLocal  *int    `json:"unit_price_local"`
	TotalPrice      int     `json:"total_price"`
	TotalPriceLocal int     `json:"total_price_local"`
	ProductCode     *string `json:"product_code"`
}

// EnrichedReceipt carries every source amount next to its converted companion.
// Nil source fields stay nil after conversion.
type EnrichedReceipt struct {
	StoreName        *string        `json:"store_name"`
	Date             *string        `json:"date"`
	Time             *string        `json:"time"`
	TotalAmount      *int           `json:"total_amount"`
	TotalAmountLocal *int           `json:"total_amount_local"`
	Subtotal         *int           `json:"subtotal"`
	SubtotalLocal    *int           `json:"subtotal_local"`
	Discount         *int           `json:"discount"`
	DiscountLocal    *int           `json:"discount_local"`
	Items            []EnrichedItem `json:"items"`
	Currency         string         `json:"currency"`
	Confidence       float32        `json:"confidence"`
	ExchangeRate     float64        `json:"exchange_rate"`
}
