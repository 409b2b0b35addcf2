package workflow

import (
	"context"
	"strings"

	"elias/app/core/ai"
	"elias/app/pkg/logger"
)

// Intent is the routed action for one utterance.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentQuery  Intent = "query"
)

// Decision is the routing outcome. Fallback marks decisions produced by
// the keyword heuristic instead of the model.
type Decision struct {
	Intent     Intent
	Confidence float64
	Reasoning  string
	Fallback   bool
}

// Completer is the single capability the workflow needs from the
// language model.
type Completer interface {
	Complete(ctx context.Context, prompt ai.Prompt) (string, error)
}

// Keywords that bias an unclassifiable utterance toward creation.
var createKeywords = []string{"crear", "nueva", "agregar", "hacer", "añadir"}

// Router classifies utterances into create or query. It never returns an
// error; any model or parse failure degrades to the keyword heuristic.
type Router struct {
	llm Completer
}

func NewRouter(llm Completer) *Router {
	return &Router{llm: llm}
}

// Classify routes one utterance. CREAR maps to create; CONSULTAR and
// AMBIGUO both map to query, so unclear messages stay read-only.
func (r *Router) Classify(ctx context.Context, utterance string) Decision {
	raw, err := r.llm.Complete(ctx, ai.BuildClassification(utterance))
	if err != nil {
		logger.Error("Intent classification call failed: %v", err)
		return keywordDecision(utterance)
	}
	parsed, ok := ai.ParseClassification(raw)
	if !ok {
		logger.Error("Intent classification returned unparseable output")
		return keywordDecision(utterance)
	}

	intent := IntentQuery
	if parsed.Intent == "crear" {
		intent = IntentCreate
	}
	logger.Info("Intent classified as %s (confidence %.2f)", intent, parsed.Confidence)
	return Decision{
		Intent:     intent,
		Confidence: parsed.Confidence,
		Reasoning:  parsed.Reasoning,
	}
}

// keywordDecision is the deterministic fallback: any create keyword in
// the utterance routes to create, everything else to query.
func keywordDecision(utterance string) Decision {
	lower := strings.ToLower(utterance)
	for _, kw := range createKeywords {
		if strings.Contains(lower, kw) {
			return Decision{
				Intent:    IntentCreate,
				Reasoning: "palabra clave detectada: " + kw,
				Fallback:  true,
			}
		}
	}
	return Decision{
		Intent:    IntentQuery,
		Reasoning: "sin indicadores de creación",
		Fallback:  true,
	}
}
