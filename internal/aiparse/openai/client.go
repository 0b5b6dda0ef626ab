package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tabilog-dev/receipt-engine/internal/aiparse"
	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

// ExtractReceipt implements aiparse.TextParser using text-only
// chat/completions against an OpenAI-compatible endpoint.
func (c *Client) ExtractReceipt(ctx context.Context, ocrText string) (engine.ParsedReceipt, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(ocrText),
	)

	schema := aiparse.BuildReceiptSchema(c.cfg.MaxItems)
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": buildSystemPrompt(c.cfg.Currency)},
			{"role": "user", "content": buildUserPrompt(ocrText) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return engine.ParsedReceipt{}, nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return engine.ParsedReceipt{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid)
		return engine.ParsedReceipt{}, raw, fmt.Errorf("no choices in openai response")
	}

	payload, err := aiparse.ExtractJSONObject(cc.Choices[0].Message.Content)
	if err != nil {
		return engine.ParsedReceipt{}, raw, fmt.Errorf("locate payload: %w", err)
	}

	cleaned, dropped, err := aiparse.SanitizeReceiptPayload(payload)
	if err != nil {
		c.logger.Error("llm.extract.sanitize_failed", "req_id", rid, "error", err)
		return engine.ParsedReceipt{}, payload, fmt.Errorf("sanitize payload: %w", err)
	}
	if len(dropped) > 0 {
		c.logger.Warn("llm.extract.fields_dropped", "req_id", rid, "dropped", dropped)
	}
	if err := aiparse.ValidateAgainstSchema(schema, cleaned); err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return engine.ParsedReceipt{}, cleaned, fmt.Errorf("schema validation failed: %w", err)
	}

	rec, err := aiparse.DecodeReceiptPayload(cleaned, c.cfg.Currency, c.cfg.MaxItems)
	if err != nil {
		return engine.ParsedReceipt{}, cleaned, err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"store", rec.StoreName,
		"date", rec.Date,
		"items", len(rec.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, cleaned, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func buildSystemPrompt(currency string) string {
	parts := []string{
		"You are a receipt parser for Japanese store receipts. Return ONLY JSON that matches the JSON Schema provided.",
		"Use ISO-8601 dates (YYYY-MM-DD) and 24h HH:MM times.",
		"Amounts are integers in " + currency + " units; never use decimals.",
		"The discount, when present, is negative.",
		"Item names stay in their original language; do not translate.",
		"Use null for a field you cannot read; never invent values.",
	}
	return strings.Join(parts, " ")
}

func buildUserPrompt(ocr string) string {
	var b strings.Builder
	b.WriteString("Receipt text (first ~3k chars):\n")
	if len(ocr) > 3000 {
		b.WriteString(ocr[:3000])
	} else {
		b.WriteString(ocr)
	}
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
