package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tabilog-dev/receipt-engine/internal/aiparse"
	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

// Config holds the settings for the structured receipt-parse service.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Currency string
	MaxItems int
}

// Client calls an external service that accepts positioned OCR fields and
// returns a structured receipt. Responses are validated against the same
// schema used for generative output before they are trusted.
type Client struct {
	cfg    Config
	http   *http.Client
	schema map[string]any
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "JPY"
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		schema: aiparse.BuildReceiptSchema(cfg.MaxItems),
		logger: logger,
	}, nil
}

type parseRequest struct {
	Fields []engine.OcrField `json:"fields"`
}

// ParseFields submits the OCR fields and decodes the structured response.
func (c *Client) ParseFields(ctx context.Context, fields []engine.OcrField) (engine.ParsedReceipt, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(parseRequest{Fields: fields})
	if err != nil {
		return engine.ParsedReceipt{}, fmt.Errorf("encode parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(bs))
	if err != nil {
		return engine.ParsedReceipt{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	c.logger.Info("remote.parse.request",
		"req_id", reqID,
		"url", c.cfg.BaseURL,
		"fields", len(fields),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("remote.parse.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return engine.ParsedReceipt{}, fmt.Errorf("send parse request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("remote.parse.body_close_error", "req_id", reqID, "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("remote.parse.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return engine.ParsedReceipt{}, fmt.Errorf("remote parse: non-2xx status: %d", resp.StatusCode)
	}

	doc, dropped, err := aiparse.SanitizeReceiptPayload(raw)
	if err != nil {
		c.logger.Error("remote.parse.sanitize_failed", "req_id", reqID, "error", err)
		return engine.ParsedReceipt{}, fmt.Errorf("sanitize remote payload: %w", err)
	}
	if len(dropped) > 0 {
		c.logger.Warn("remote.parse.fields_dropped", "req_id", reqID, "fields", dropped)
	}
	if err := aiparse.ValidateAgainstSchema(c.schema, doc); err != nil {
		c.logger.Error("remote.parse.schema_validation_failed", "req_id", reqID, "error", err)
		return engine.ParsedReceipt{}, fmt.Errorf("remote payload failed validation: %w", err)
	}

	rec, err := aiparse.DecodeReceiptPayload(doc, c.cfg.Currency, c.cfg.MaxItems)
	if err != nil {
		return engine.ParsedReceipt{}, err
	}

	c.logger.Info("remote.parse.ok", "req_id", reqID, "items", len(rec.Items))
	return rec, nil
}
