package workflow

import (
	"context"
	"errors"
	"testing"

	"elias/app/core/ai"
)

type stubCompleter struct {
	responses []string
	err       error
	prompts   []ai.Prompt
}

func (s *stubCompleter) Complete(_ context.Context, prompt ai.Prompt) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no stub response")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func TestClassifyCrear(t *testing.T) {
	router := NewRouter(&stubCompleter{responses: []string{
		`{"intencion": "CREAR", "confianza": 92, "razonamiento": "verbos de acción"}`,
	}})
	decision := router.Classify(context.Background(), "tengo que comprar pan")
	if decision.Intent != IntentCreate {
		t.Fatalf("intent: got %q", decision.Intent)
	}
	if decision.Fallback {
		t.Fatal("model decision must not be marked fallback")
	}
	if decision.Confidence != 0.92 {
		t.Fatalf("confidence: got %v", decision.Confidence)
	}
}

func TestClassifyConsultarAndAmbiguo(t *testing.T) {
	for _, intent := range []string{"CONSULTAR", "AMBIGUO"} {
		router := NewRouter(&stubCompleter{responses: []string{
			`{"intencion": "` + intent + `", "confianza": 80}`,
		}})
		decision := router.Classify(context.Background(), "hola")
		if decision.Intent != IntentQuery {
			t.Fatalf("%s: got %q, want query", intent, decision.Intent)
		}
	}
}

func TestClassifyFallbackOnModelError(t *testing.T) {
	router := NewRouter(&stubCompleter{err: errors.New("timeout")})

	decision := router.Classify(context.Background(), "quiero crear una lista")
	if decision.Intent != IntentCreate || !decision.Fallback {
		t.Fatalf("keyword fallback expected create, got %+v", decision)
	}

	decision = router.Classify(context.Background(), "¿qué tengo pendiente?")
	if decision.Intent != IntentQuery || !decision.Fallback {
		t.Fatalf("keyword fallback expected query, got %+v", decision)
	}
}

func TestClassifyFallbackOnGarbageOutput(t *testing.T) {
	router := NewRouter(&stubCompleter{responses: []string{"no soy json"}})
	decision := router.Classify(context.Background(), "agregar leche a la lista")
	if decision.Intent != IntentCreate || !decision.Fallback {
		t.Fatalf("expected keyword fallback create, got %+v", decision)
	}
}
