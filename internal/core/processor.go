package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabilog-dev/receipt-engine/internal/engine"
	"github.com/tabilog-dev/receipt-engine/internal/store"
	"github.com/tabilog-dev/receipt-engine/internal/strategy"
)

// FieldRecognizer turns a receipt image into positioned OCR fields.
type FieldRecognizer interface {
	RecognizeFields(ctx context.Context, img []byte) ([]engine.OcrField, error)
}

// Processor drives the full pipeline: OCR, the extraction fallback chain,
// currency enrichment, and persistence.
type Processor struct {
	vision FieldRecognizer
	chain  *strategy.Chain
	store  store.Store
	rate   float64
	logger *slog.Logger
}

func NewProcessor(vision FieldRecognizer, chain *strategy.Chain, st store.Store, defaultRate float64, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultRate <= 0 {
		defaultRate = 1.0
	}
	return &Processor{
		vision: vision,
		chain:  chain,
		store:  st,
		rate:   defaultRate,
		logger: logger,
	}
}

// ExtractAndEnrich runs the fallback chain over already-captured input and
// converts the result at the given exchange rate. A rate of zero falls back to
// the processor's default.
func (p *Processor) ExtractAndEnrich(ctx context.Context, in strategy.Input, rate float64) (engine.EnrichedReceipt, error) {
	if rate <= 0 {
		rate = p.rate
	}
	rec, err := p.chain.Extract(ctx, in)
	if err != nil {
		return engine.EnrichedReceipt{}, err
	}
	return engine.Enrich(rec, rate), nil
}

// ProcessScan OCRs an image, extracts and enriches it, and persists the
// result. It returns the stored record.
func (p *Processor) ProcessScan(ctx context.Context, img []byte, rate float64) (*store.Record, error) {
	start := time.Now()

	fields, err := p.vision.RecognizeFields(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("recognize fields: %w", err)
	}

	enriched, err := p.ExtractAndEnrich(ctx, strategy.Input{Fields: fields}, rate)
	if err != nil {
		return nil, err
	}

	rec := &store.Record{Receipt: enriched}
	if err := p.store.Save(rec); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	p.logger.Info("core.scan.ok",
		"record_id", rec.ID,
		"fields", len(fields),
		"items", len(enriched.Items),
		"confidence", enriched.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}
