package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tabilog-dev/receipt-engine/internal/common"
	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

// Input is what an extraction strategy receives: positioned OCR fields,
// already-flattened receipt text, or both.
type Input struct {
	Fields []engine.OcrField
	Text   string
}

// Empty reports whether the input carries nothing to extract from.
func (in Input) Empty() bool {
	return len(in.Fields) == 0 && strings.TrimSpace(in.Text) == ""
}

// Strategy is one extraction approach in the fallback chain.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, in Input) (engine.ParsedReceipt, error)
}

// Attempt records one strategy failure for diagnostics.
type Attempt struct {
	Strategy string
	Err      error
}

// ChainError is the terminal error raised when every strategy fails. It keeps
// each per-strategy error retrievable, including the local heuristic's.
type ChainError struct {
	Attempts []Attempt
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return "all extraction strategies failed: " + strings.Join(parts, "; ")
}

func (e *ChainError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Chain runs its strategies strictly in sequence under per-strategy timeouts.
// The first success wins; results are never merged across strategies, so a
// caller always sees one extraction quality, not a silent mix. A timed-out
// strategy is treated exactly like one that returned an error.
type Chain struct {
	strategies []Strategy
	timeout    time.Duration
	logger     *slog.Logger
}

func NewChain(logger *slog.Logger, timeout time.Duration, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Chain{strategies: strategies, timeout: timeout, logger: logger}
}

// Extract runs the fallback chain over in. An empty input fails immediately;
// defaults are never silently substituted at the top level.
func (c *Chain) Extract(ctx context.Context, in Input) (engine.ParsedReceipt, error) {
	if in.Empty() {
		return engine.ParsedReceipt{}, common.NewAppError(
			"EMPTY_INPUT", "no ocr fields or receipt text provided", common.ErrInvalidInput)
	}

	attempts := make([]Attempt, 0, len(c.strategies))
	for _, s := range c.strategies {
		start := time.Now()
		sctx, cancel := context.WithTimeout(ctx, c.timeout)
		rec, err := s.Extract(sctx, in)
		cancel()

		if err != nil {
			c.logger.Warn("chain.strategy.failed",
				"strategy", s.Name(),
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			attempts = append(attempts, Attempt{Strategy: s.Name(), Err: err})
			continue
		}

		c.logger.Info("chain.strategy.ok",
			"strategy", s.Name(),
			"has_total", rec.TotalAmount != nil,
			"items", len(rec.Items),
			"confidence", rec.Confidence,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return rec, nil
	}

	return engine.ParsedReceipt{}, &ChainError{Attempts: attempts}
}
