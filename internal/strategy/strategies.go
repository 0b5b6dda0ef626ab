package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/tabilog-dev/receipt-engine/internal/engine"
)

// StructuredParser is the remote structured-parse service contract.
type StructuredParser interface {
	ParseFields(ctx context.Context, fields []engine.OcrField) (engine.ParsedReceipt, error)
}

// TextParser is the generative free-text parser contract.
type TextParser interface {
	ExtractReceipt(ctx context.Context, text string) (engine.ParsedReceipt, []byte, error)
}

// Remote escalates the raw field list to an external structured-parse
// service. It needs positioned fields; text-only input falls through.
type Remote struct {
	client StructuredParser
}

func NewRemote(client StructuredParser) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Name() string { return "remote-structured" }

func (r *Remote) Extract(ctx context.Context, in Input) (engine.ParsedReceipt, error) {
	if len(in.Fields) == 0 {
		return engine.ParsedReceipt{}, fmt.Errorf("remote-structured: input carries no positioned fields")
	}
	return r.client.ParseFields(ctx, in.Fields)
}

// AI submits the flattened receipt text to a generative parser and accepts
// its structured payload.
type AI struct {
	parser             TextParser
	minFieldConfidence float32
}

func NewAI(parser TextParser, minFieldConfidence float32) *AI {
	if minFieldConfidence <= 0 {
		minFieldConfidence = engine.DefaultConfig().MinFieldConfidence
	}
	return &AI{parser: parser, minFieldConfidence: minFieldConfidence}
}

func (a *AI) Name() string { return "ai-assisted" }

func (a *AI) Extract(ctx context.Context, in Input) (engine.ParsedReceipt, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		text = engine.FlattenFields(in.Fields, a.minFieldConfidence)
	}
	if text == "" {
		return engine.ParsedReceipt{}, fmt.Errorf("ai-assisted: nothing to parse after flattening")
	}
	rec, _, err := a.parser.ExtractReceipt(ctx, text)
	return rec, err
}

// Local runs the in-process pattern pipeline; no external call, last in the
// chain.
type Local struct {
	parser *engine.Parser
}

func NewLocal(parser *engine.Parser) *Local {
	return &Local{parser: parser}
}

func (l *Local) Name() string { return "local-heuristic" }

func (l *Local) Extract(_ context.Context, in Input) (engine.ParsedReceipt, error) {
	if len(in.Fields) > 0 {
		return l.parser.ParseFields(in.Fields), nil
	}
	return l.parser.ParseText(in.Text), nil
}
