package engine

import "log/slog"

// Config carries the tunable constants of the extraction engine. The window
// sizes are empirically tuned per receipt layout; they are parameters, not
// assumptions.
type Config struct {
	// MinFieldConfidence drops OCR fields below this score before ordering.
	MinFieldConfidence float32
	// ItemMinAmount..ItemMaxAmount is the inclusive sanity band a candidate
	// amount must fall in to be accepted as a line-item price.
	ItemMinAmount int
	ItemMaxAmount int
	// TotalCeiling bounds the unlabeled-total fallback.
	TotalCeiling int
	// MaxItems caps the item list against pathological inputs.
	MaxItems int
	// Look-around windows, in lines.
	CodeForwardWindow  int
	CodeBackwardWindow int
	NameBackwardWindow int
	QtyBackwardWindow  int
	// DisableUnlabeledTotal switches off the max-amount-as-total heuristic.
	DisableUnlabeledTotal bool
	// Currency is the source currency code stamped on every result.
	Currency string
}

// DefaultConfig returns the tuning used for Japanese convenience-store
// receipts.
func DefaultConfig() Config {
	return Config{
		MinFieldConfidence: 0.5,
		ItemMinAmount:      100,
		ItemMaxAmount:      100_000,
		TotalCeiling:       100_000,
		MaxItems:           20,
		CodeForwardWindow:  2,
		CodeBackwardWindow: 5,
		NameBackwardWindow: 3,
		QtyBackwardWindow:  2,
		Currency:           "JPY",
	}
}

// Parser runs the local heuristic extraction pipeline. It holds no mutable
// state; a single Parser is safe for concurrent use.
type Parser struct {
	cfg    Config
	logger *slog.Logger
}

func NewParser(cfg Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.MinFieldConfidence <= 0 {
		cfg.MinFieldConfidence = def.MinFieldConfidence
	}
	if cfg.ItemMinAmount <= 0 {
		cfg.ItemMinAmount = def.ItemMinAmount
	}
	if cfg.ItemMaxAmount <= 0 {
		cfg.ItemMaxAmount = def.ItemMaxAmount
	}
	if cfg.TotalCeiling <= 0 {
		cfg.TotalCeiling = def.TotalCeiling
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.CodeForwardWindow <= 0 {
		cfg.CodeForwardWindow = def.CodeForwardWindow
	}
	if cfg.CodeBackwardWindow <= 0 {
		cfg.CodeBackwardWindow = def.CodeBackwardWindow
	}
	if cfg.NameBackwardWindow <= 0 {
		cfg.NameBackwardWindow = def.NameBackwardWindow
	}
	if cfg.QtyBackwardWindow <= 0 {
		cfg.QtyBackwardWindow = def.QtyBackwardWindow
	}
	if cfg.Currency == "" {
		cfg.Currency = def.Currency
	}
	return &Parser{cfg: cfg, logger: logger}
}

// Config returns the effective configuration after defaults were applied.
func (p *Parser) Config() Config { return p.cfg }

// ParseFields extracts a receipt from positioned OCR fields.
func (p *Parser) ParseFields(fields []OcrField) ParsedReceipt {
	return p.parseLines(NormalizeFields(fields, p.cfg.MinFieldConfidence))
}

// ParseText extracts a receipt from already-flattened receipt text.
func (p *Parser) ParseText(text string) ParsedReceipt {
	return p.parseLines(SplitLines(text))
}

func (p *Parser) parseLines(lines []string) ParsedReceipt {
	r := ParsedReceipt{
		Items:    []LineItem{},
		Currency: p.cfg.Currency,
	}
	if len(lines) == 0 {
		return r
	}
	r.StoreName = extractStoreName(lines)
	r.Date = extractDate(lines)
	r.Time = extractTime(lines)
	r.TotalAmount = extractTotal(lines, p.cfg)
	r.Subtotal = extractSubtotal(lines)
	r.Discount = extractDiscount(lines)
	r.Items = extractItems(lines, p.cfg)
	r.Confidence = scoreReceipt(r)

	p.logger.Debug("engine.parse.done",
		"lines", len(lines),
		"has_store", r.StoreName != nil,
		"has_date", r.Date != nil,
		"has_total", r.TotalAmount != nil,
		"items", len(r.Items),
		"confidence", r.Confidence,
	)
	return r
}
