package notion

import "strings"

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "Planificación"
	ProjectStatusActive    ProjectStatus = "Activo"
	ProjectStatusPaused    ProjectStatus = "Pausado"
	ProjectStatusDone      ProjectStatus = "Completado"
	ProjectStatusCancelled ProjectStatus = "Cancelado"
)

func ParseProjectStatus(raw string) ProjectStatus {
	switch ProjectStatus(strings.TrimSpace(raw)) {
	case ProjectStatusActive, ProjectStatusPaused, ProjectStatusDone, ProjectStatusCancelled:
		return ProjectStatus(strings.TrimSpace(raw))
	default:
		return ProjectStatusPlanning
	}
}

// Project is one row of the projects database. Read-mostly from this
// core's perspective: the chat pipeline only resolves names to ids.
type Project struct {
	ID          string
	URL         string
	Name        string
	Description string
	Status      ProjectStatus
	StartDate   string // YYYY-MM-DD, empty when unset
	EndDate     string
	Progress    int // 0-100
	CreatedTime string
}

var (
	projectNameKeys     = []string{"Nombre", "Name"}
	projectDescKeys     = []string{"Descripción", "Description"}
	projectStatusKeys   = []string{"Estado", "Status"}
	projectDatesKeys    = []string{"Fechas", "Dates"}
	projectProgressKeys = []string{"Progreso", "Progress"}
)

func clampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

func ProjectFromRecord(rec Record) Project {
	start, end := decodeDate(rec.Properties, projectDatesKeys)
	progress := 0
	if num, ok := decodeNumber(rec.Properties, projectProgressKeys); ok {
		progress = clampProgress(int(num))
	}
	return Project{
		ID:          rec.ID,
		URL:         rec.URL,
		Name:        decodeTitle(rec.Properties, projectNameKeys),
		Description: decodeRichText(rec.Properties, projectDescKeys),
		Status:      ParseProjectStatus(decodeSelect(rec.Properties, projectStatusKeys)),
		StartDate:   start,
		EndDate:     end,
		Progress:    clampProgress(progress),
		CreatedTime: rec.CreatedTime,
	}
}

// Properties encodes the project for a full replace-on-write. Status and
// progress are always emitted; the date range only when a start exists.
func (p Project) Properties() ([]byte, error) {
	b := newPropertyBuilder()
	if p.Name != "" {
		b.Title("Nombre", p.Name)
	}
	if p.Description != "" {
		b.RichText("Descripción", p.Description)
	}
	b.Select("Estado", string(p.Status))
	if p.StartDate != "" {
		b.Date("Fechas", p.StartDate, p.EndDate)
	}
	b.Number("Progreso", clampProgress(p.Progress))
	return b.Build()
}
