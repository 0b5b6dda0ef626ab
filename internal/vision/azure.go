package vision

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
	"github.com/google/uuid"

	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

// Config holds the Azure Computer Vision settings.
type Config struct {
	Endpoint string
	APIKey   string
	// Enhance runs the image through the preprocessing pipeline before OCR.
	Enhance bool
}

// Client wraps the Azure Computer Vision OCR endpoint and converts its
// region/line/word output into positioned fields for the extraction chain.
type Client struct {
	cv      *computervision.BaseClient
	enhance bool
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("vision: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision: API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cv := computervision.New(cfg.Endpoint)
	cv.Authorizer = autorest.NewCognitiveServicesAuthorizer(cfg.APIKey)
	return &Client{cv: &cv, enhance: cfg.Enhance, logger: logger}, nil
}

// RecognizeFields runs printed-text OCR over the image and returns one field
// per recognized line. The v3.0 OCR endpoint reports no per-line confidence,
// so every field carries 1.0 and thresholding happens downstream.
func (c *Client) RecognizeFields(ctx context.Context, img []byte) ([]engine.OcrField, error) {
	reqID := uuid.New().String()
	start := time.Now()

	if c.enhance {
		enhanced, err := EnhanceForOCR(img)
		if err != nil {
			c.logger.Warn("vision.enhance.failed", "req_id", reqID, "error", err)
		} else {
			img = enhanced
		}
	}

	c.logger.Info("vision.ocr.request", "req_id", reqID, "bytes", len(img))

	result, err := c.cv.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(img)),
		computervision.OcrLanguagesJa,
	)
	if err != nil {
		c.logger.Error("vision.ocr.failed", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("recognize printed text: %w", err)
	}

	fields := fieldsFromResult(result)

	c.logger.Info("vision.ocr.ok",
		"req_id", reqID,
		"fields", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}

func fieldsFromResult(result computervision.OcrResult) []engine.OcrField {
	var fields []engine.OcrField
	if result.Regions == nil {
		return fields
	}
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			x, y, ok := parseBoundingBox(line.BoundingBox)
			if !ok || line.Words == nil {
				continue
			}
			var sb strings.Builder
			for _, word := range *line.Words {
				if word.Text == nil {
					continue
				}
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(*word.Text)
			}
			text := strings.TrimSpace(sb.String())
			if text == "" {
				continue
			}
			fields = append(fields, engine.OcrField{
				Text:       text,
				Confidence: 1.0,
				TopY:       y,
				LeftX:      x,
			})
		}
	}
	return fields
}

// parseBoundingBox decodes the "x,y,width,height" string the OCR API uses.
func parseBoundingBox(box *string) (x, y float64, ok bool) {
	if box == nil {
		return 0, 0, false
	}
	parts := strings.Split(*box, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	xi, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	yi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return float64(xi), float64(yi), true
}
