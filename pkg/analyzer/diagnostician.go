package analyzer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helmcode/sql-copilot/pkg/bundle"
	"github.com/helmcode/sql-copilot/pkg/llm"
	"github.com/helmcode/sql-copilot/pkg/model"
	"github.com/helmcode/sql-copilot/pkg/parser"
	"github.com/helmcode/sql-copilot/pkg/prompts"
)

// Diagnostician drives the diagnosis-exchange protocol over two independent
// long-lived sessions: one for structured analysis and improvement rounds,
// one for free-form chat. Both are created at construction and live for the
// Diagnostician's lifetime. Analyze and Improve share the diagnosis session,
// so the model keeps the whole analyze-then-improve conversation.
//
// Transport and model failures never escape as errors: every call resolves
// to a typed, inspectable result.
type Diagnostician struct {
	diagSession *llm.Session
	chatSession *llm.Session
	logger      *zap.Logger
}

func New(provider llm.LLM, logger *zap.Logger) *Diagnostician {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Diagnostician{
		diagSession: llm.NewSession(provider, prompts.DiagnosisSystemPrompt, logger),
		chatSession: llm.NewSession(provider, prompts.ChatSystemPrompt, logger),
		logger:      logger,
	}
}

// Analyze runs one diagnosis round for a bundle. On transport failure the
// returned Diagnosis explains the error in its reasoning and carries empty
// findings, a valid if unhelpful result.
func (d *Diagnostician) Analyze(ctx context.Context, b bundle.Bundle) *model.Diagnosis {
	req := prompts.BuildAnalyzeRequest(b)

	raw, err := d.diagSession.Send(ctx, req)
	if err != nil {
		diag := model.NewDiagnosis()
		diag.Reasoning = fmt.Sprintf("Error occurred during analysis: %v", err)
		return diag
	}

	diag := parser.ParseDiagnosis(raw)
	d.logger.Info("diagnosis parsed",
		zap.Int("bottlenecks", len(diag.Bottlenecks)),
		zap.Int("root_causes", len(diag.RootCauses)),
		zap.Int("recommendations", len(diag.Recommendations)),
		zap.Bool("parse_error", diag.ParseError != ""))
	return diag
}

// Improve asks for a rewritten query. priorRaw is the verbatim reply from a
// previous analysis round when available; prior is the typed fallback used
// to reconstruct that context when the raw text was not retained. history
// lines, when present, switch the instruction to the recursive variant.
// On failure the result has an empty query and an error-tagged rationale.
func (d *Diagnostician) Improve(ctx context.Context, b bundle.Bundle, priorRaw string, prior *model.Diagnosis, history []model.IterationRecord) *model.ImprovedQuery {
	kind := prompts.RequestImprove
	for _, rec := range history {
		if rec.Kind != model.KindOriginal {
			kind = prompts.RequestImproveRecursive
			break
		}
	}
	req := prompts.BuildImproveRequest(b, priorRaw, prior, history, kind)

	raw, err := d.diagSession.Send(ctx, req)
	if err != nil {
		return &model.ImprovedQuery{Rationale: fmt.Sprintf("error: %v", err)}
	}

	improved := parser.ParseImprovedQuery(raw)
	d.logger.Info("improvement parsed",
		zap.Bool("usable", improved.ImprovedQuery != ""),
		zap.Int("raw_bytes", len(raw)))
	return improved
}

// ChatRespond answers a free-form question over the chat session, encoding
// earlier exchanges for context. Errors come back as readable text, not as
// Go errors.
func (d *Diagnostician) ChatRespond(ctx context.Context, pairs []prompts.ChatPair, message string) string {
	req := prompts.BuildChatRequest(pairs, message)

	raw, err := d.chatSession.Send(ctx, req)
	if err != nil {
		return fmt.Sprintf("Sorry, I encountered an error: %v", err)
	}
	return parser.ExtractChatResponse(raw)
}
