package ai

import (
	"strings"
	"time"
)

// Prompt is a rendered system+user pair ready for Complete.
type Prompt struct {
	System string
	User   string
}

type TemplateKind int

const (
	KindClassification TemplateKind = iota
	KindExtraction
	KindSummary
)

const classificationSystem = `Eres un clasificador de intenciones experto en gestión de tareas y productividad.
Tu trabajo es analizar con precisión qué acción específica quiere realizar el usuario.`

const classificationTemplate = `ANALIZA ESTE TEXTO DEL USUARIO: "{texto_usuario}"

CLASIFICACIÓN DE INTENCIONES:

CREAR (el usuario quiere crear nueva(s) tarea(s)):
- Indicadores: "necesito", "tengo que", "debo", "quiero hacer", "para el proyecto"
- Verbos de acción: "comprar", "llamar", "estudiar", "revisar", "hacer"
- Expresiones temporales: "mañana", "esta semana", "para el viernes"

CONSULTAR (el usuario quiere ver información existente):
- Preguntas directas: "¿cuántas?", "¿qué tareas?", "¿cómo va?"
- Verbos de consulta: "ver", "mostrar", "listar"
- Palabras clave: "pendientes", "completadas", "resumen"

AMBIGUO (no está claro qué quiere hacer):
- Saludos simples, consultas genéricas, texto incompleto

NIVELES DE CONFIANZA:
- 90-100: muy claro, indicadores múltiples
- 70-89: claro, algunos indicadores
- 50-69: probable, indicadores débiles
- 0-49: incierto, clasificar como AMBIGUO

RESPONDE ÚNICAMENTE CON ESTE JSON:
{
    "intencion": "CREAR|CONSULTAR|AMBIGUO",
    "confianza": número_entre_0_y_100,
    "razonamiento": "explicación específica con indicadores detectados"
}`

const extractionSystem = `Eres un asistente experto en gestión de tareas que convierte texto natural en tareas estructuradas.

REGLAS OBLIGATORIAS:
1. PROYECTO: SIEMPRE asignar uno de los proyectos disponibles
2. FECHA: calcular fechas exactas basándote en la fecha actual
3. TÍTULO: usar formato "VERBO + objeto/acción" (ej: "Revisar documentación")
4. MÚLTIPLES TAREAS: si detectas varias acciones, crear una tarea separada para cada una`

const extractionTemplate = `FECHA ACTUAL: {fecha_actual}

TEXTO DEL USUARIO: "{texto_usuario}"

PROYECTOS DISPONIBLES:
{proyectos_formateados}

INSTRUCCIONES:

TÍTULO DE LA TAREA:
- SIEMPRE empezar con un verbo en infinitivo seguido del objeto/acción
- Ejemplos: "Comprar vitaminas", "Revisar código", "Estudiar capítulo 5"

FECHAS INTELIGENTES:
- "mañana" = {fecha_manana}
- "pasado mañana" = {fecha_pasado_manana}
- "en 2 días" = {fecha_en_2_dias}
- "en una semana" = {fecha_en_semana}
- "en 2 semanas" = {fecha_en_2_semanas}

PRIORIDAD AUTOMÁTICA:
- Urgente: "urgente", "ya", "ahora", "inmediato"
- Alta: fechas cercanas (1-2 días), "importante", "crítico"
- Media: fechas normales (3-7 días), tareas rutinarias
- Baja: fechas lejanas (>1 semana), tareas opcionales

RESPONDE ÚNICAMENTE CON UN JSON VÁLIDO:
{
    "tareas": [
        {
            "titulo": "Verbo + acción específica",
            "descripcion": "Contexto adicional si es necesario",
            "prioridad": "Baja|Media|Alta|Urgente",
            "proyecto": "uno de los proyectos disponibles",
            "fecha_vencimiento": "YYYY-MM-DD o null"
        }
    ]
}`

const summarySystem = `Eres un asistente de productividad que resume tareas de forma clara y motivadora.
Responde en español, breve y directo.`

const summaryTemplate = `EL USUARIO PREGUNTÓ: "{texto_usuario}"

TAREAS ACTUALES:
{tareas_formateadas}

INSTRUCCIONES:
- Responde la pregunta del usuario usando SOLO las tareas listadas
- Máximo 5 tareas en la respuesta; si hay más, indica cuántas quedan
- No inventes tareas ni fechas`

// Build renders a template kind with literal placeholder replacement.
// Unresolved placeholders are left verbatim; rendering cannot fail.
func Build(kind TemplateKind, vars map[string]string) Prompt {
	switch kind {
	case KindClassification:
		return Prompt{
			System: classificationSystem,
			User:   render(classificationTemplate, vars),
		}
	case KindExtraction:
		return Prompt{
			System: extractionSystem,
			User:   render(extractionTemplate, vars),
		}
	case KindSummary:
		return Prompt{
			System: summarySystem,
			User:   render(summaryTemplate, vars),
		}
	default:
		return Prompt{}
	}
}

// BuildClassification embeds the raw utterance into the intent template.
func BuildClassification(utterance string) Prompt {
	return Build(KindClassification, map[string]string{
		"texto_usuario": utterance,
	})
}

// BuildExtraction embeds the utterance, the available project names and
// the derived calendar dates, all computed from now at call time.
func BuildExtraction(utterance string, projectNames []string, now time.Time) Prompt {
	return Build(KindExtraction, map[string]string{
		"texto_usuario":         utterance,
		"proyectos_formateados": formatProjects(projectNames),
		"fecha_actual":          now.Format("2006-01-02"),
		"fecha_manana":          now.AddDate(0, 0, 1).Format("2006-01-02"),
		"fecha_pasado_manana":   now.AddDate(0, 0, 2).Format("2006-01-02"),
		"fecha_en_2_dias":       now.AddDate(0, 0, 2).Format("2006-01-02"),
		"fecha_en_semana":       now.AddDate(0, 0, 7).Format("2006-01-02"),
		"fecha_en_2_semanas":    now.AddDate(0, 0, 14).Format("2006-01-02"),
	})
}

// BuildSummary embeds the utterance and a pre-formatted task listing.
func BuildSummary(utterance, formattedTasks string) Prompt {
	return Build(KindSummary, map[string]string{
		"texto_usuario":      utterance,
		"tareas_formateadas": formattedTasks,
	})
}

func render(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

func formatProjects(names []string) string {
	if len(names) == 0 {
		return "• (sin proyectos disponibles)"
	}
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "• "+name)
	}
	return strings.Join(lines, "\n")
}
