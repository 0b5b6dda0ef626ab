package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tabilog-dev/receipt-engine/internal/aiparse"
	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

// Client implements aiparse.TextParser using Google Gemini.
type Client struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	currency string
	maxItems int
	logger   *slog.Logger
}

// NewClient creates a Gemini-backed text parser.
func NewClient(ctx context.Context, apiKey, modelName, currency string, maxItems int, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}
	if currency == "" {
		currency = "JPY"
	}
	if maxItems <= 0 {
		maxItems = 20
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{
		client:   client,
		model:    client.GenerativeModel(modelName),
		currency: currency,
		maxItems: maxItems,
		logger:   logger,
	}, nil
}

// ExtractReceipt submits the flattened receipt text and decodes the JSON
// payload from the model's answer.
func (c *Client) ExtractReceipt(ctx context.Context, ocrText string) (engine.ParsedReceipt, []byte, error) {
	start := time.Now()
	schema := aiparse.BuildReceiptSchema(c.maxItems)

	prompt := buildPrompt(c.currency, ocrText)
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return engine.ParsedReceipt{}, nil, fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return engine.ParsedReceipt{}, nil, fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	payload, err := aiparse.ExtractJSONObject(text.String())
	if err != nil {
		return engine.ParsedReceipt{}, nil, fmt.Errorf("locate payload: %w", err)
	}
	cleaned, dropped, err := aiparse.SanitizeReceiptPayload(payload)
	if err != nil {
		return engine.ParsedReceipt{}, payload, fmt.Errorf("sanitize payload: %w", err)
	}
	if len(dropped) > 0 {
		c.logger.Warn("gemini.extract.fields_dropped", "dropped", dropped)
	}
	if err := aiparse.ValidateAgainstSchema(schema, cleaned); err != nil {
		return engine.ParsedReceipt{}, cleaned, fmt.Errorf("schema validation failed: %w", err)
	}

	rec, err := aiparse.DecodeReceiptPayload(cleaned, c.currency, c.maxItems)
	if err != nil {
		return engine.ParsedReceipt{}, cleaned, err
	}

	c.logger.Info("gemini.extract.ok",
		"items", len(rec.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, cleaned, nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() error {
	return c.client.Close()
}

func buildPrompt(currency, ocr string) string {
	var b strings.Builder
	b.WriteString("Parse this Japanese store receipt into JSON with keys ")
	b.WriteString("store_name, date (YYYY-MM-DD), time (HH:MM), total_amount, subtotal, discount, items, currency, confidence. ")
	b.WriteString("Amounts are integers in " + currency + " units; discount is negative; ")
	b.WriteString("each item has name, quantity, unit_price, total_price, product_code. ")
	b.WriteString("Use null for anything you cannot read. Return ONLY the JSON object.\n\nReceipt text:\n")
	if len(ocr) > 3000 {
		b.WriteString(ocr[:3000])
	} else {
		b.WriteString(ocr)
	}
	return b.String()
}
