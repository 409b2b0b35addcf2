package ai

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"elias/app/core/notion"
)

// Draft is an unvalidated task extracted from model output: a Task minus
// store-assigned fields, with a raw project name instead of a resolved id.
type Draft struct {
	Title       string
	Description string
	Priority    notion.TaskPriority
	DueDate     string // YYYY-MM-DD, empty when unset or invalid
	ProjectName string
}

// Classification is the parsed intent-routing payload.
type Classification struct {
	Intent     string
	Confidence float64
	Reasoning  string
}

// ExtractJSON scans the text for the first top-level brace-balanced
// substring that parses as valid JSON. The scanner is string- and
// escape-aware, collecting every balanced candidate in order and trying
// each until one parses.
func ExtractJSON(text string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := text[start : i+1]
				if gjson.Valid(candidate) {
					return candidate, true
				}
				start = -1
			}
		}
	}
	return "", false
}

// ParseClassification reads the intent payload out of raw model output.
func ParseClassification(text string) (Classification, bool) {
	payload, ok := ExtractJSON(text)
	if !ok {
		return Classification{}, false
	}
	doc := gjson.Parse(payload)
	intent := doc.Get("intencion")
	if !intent.Exists() {
		return Classification{}, false
	}
	confidence := doc.Get("confianza").Float()
	if confidence > 1 {
		confidence = confidence / 100
	}
	return Classification{
		Intent:     strings.ToLower(strings.TrimSpace(intent.String())),
		Confidence: confidence,
		Reasoning:  doc.Get("razonamiento").String(),
	}, true
}

// ParseTaskPayload reads the extraction payload: a "tareas" array, or a
// single flat object carrying "titulo" accepted as a one-element array
// for backward compatibility. Neither shape is a parse failure.
func ParseTaskPayload(text string) ([]Draft, bool) {
	payload, ok := ExtractJSON(text)
	if !ok {
		return nil, false
	}
	doc := gjson.Parse(payload)

	items := doc.Get("tareas")
	if items.IsArray() {
		raw := items.Array()
		drafts := make([]Draft, 0, len(raw))
		for i, item := range raw {
			drafts = append(drafts, NormalizeDraft(item, i+1))
		}
		return drafts, true
	}
	if doc.Get("titulo").Exists() {
		return []Draft{NormalizeDraft(doc, 1)}, true
	}
	return nil, false
}

// Common infinitives a well-formed task title starts with.
var infinitiveVerbs = map[string]bool{
	"hacer": true, "crear": true, "revisar": true, "estudiar": true,
	"comprar": true, "llamar": true, "enviar": true, "escribir": true,
	"leer": true, "completar": true, "terminar": true, "iniciar": true,
	"planificar": true, "organizar": true, "preparar": true,
	"investigar": true, "desarrollar": true, "implementar": true,
	"diseñar": true, "analizar": true, "verificar": true,
	"comprobar": true, "actualizar": true, "modificar": true,
	"corregir": true, "solucionar": true, "resolver": true,
	"contactar": true, "reunir": true, "coordinar": true,
	"programar": true, "agendar": true, "visitar": true, "ir": true,
	"volver": true, "entregar": true, "recoger": true, "buscar": true,
}

// NormalizeDraft validates and normalizes one extracted task:
//   - empty title falls back to "Tarea N"
//   - a title not led by a known infinitive gets the "Realizar " prefix
//   - priority must match an enum member exactly, else Media
//   - a due date that is not YYYY-MM-DD is dropped silently
func NormalizeDraft(item gjson.Result, sequence int) Draft {
	title := strings.TrimSpace(item.Get("titulo").String())
	if title == "" {
		title = "Tarea " + strconv.Itoa(sequence)
	}
	title = ensureLeadingVerb(title)

	dueDate := strings.TrimSpace(item.Get("fecha_vencimiento").String())
	if dueDate != "" {
		if _, err := time.Parse("2006-01-02", dueDate); err != nil {
			dueDate = ""
		}
	}

	return Draft{
		Title:       title,
		Description: strings.TrimSpace(item.Get("descripcion").String()),
		Priority:    notion.ParseTaskPriority(item.Get("prioridad").String()),
		DueDate:     dueDate,
		ProjectName: strings.TrimSpace(item.Get("proyecto").String()),
	}
}

// FallbackDraft builds a basic draft from the raw utterance when the
// model yields nothing usable.
func FallbackDraft(utterance string) Draft {
	title := strings.TrimSpace(utterance)
	if runes := []rune(title); len(runes) > 100 {
		title = strings.TrimSpace(string(runes[:100]))
	}
	if title == "" {
		title = "Tarea sin especificar"
	} else {
		title = ensureLeadingVerb(title)
	}
	return Draft{
		Title:       title,
		Description: strings.TrimSpace(utterance),
		Priority:    notion.TaskPriorityMedium,
	}
}

func ensureLeadingVerb(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return title
	}
	if infinitiveVerbs[strings.ToLower(fields[0])] {
		return title
	}
	return "Realizar " + strings.ToLower(title)
}
