package notion

import "strings"

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "Sin empezar"
	TaskStatusInProgress TaskStatus = "En curso"
	TaskStatusDone       TaskStatus = "Completado"
)

// ParseTaskStatus coerces unrecognized values to the default rather than
// rejecting them. Older databases carried a few variant labels.
func ParseTaskStatus(raw string) TaskStatus {
	switch strings.TrimSpace(raw) {
	case string(TaskStatusInProgress), "En progreso":
		return TaskStatusInProgress
	case string(TaskStatusDone), "Completada":
		return TaskStatusDone
	default:
		return TaskStatusNotStarted
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Baja"
	TaskPriorityMedium TaskPriority = "Media"
	TaskPriorityHigh   TaskPriority = "Alta"
	TaskPriorityUrgent TaskPriority = "Urgente"
)

// ParseTaskPriority accepts exact enum members only; everything else is
// coerced to Media.
func ParseTaskPriority(raw string) TaskPriority {
	switch TaskPriority(strings.TrimSpace(raw)) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return TaskPriority(strings.TrimSpace(raw))
	default:
		return TaskPriorityMedium
	}
}

// Task is one row of the tasks database. ID, URL and CreatedTime are
// store-assigned and empty until the task is persisted.
type Task struct {
	ID          string
	URL         string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     string // YYYY-MM-DD, empty when unset
	ProjectIDs  []string
	CreatedTime string
}

var (
	taskTitleKeys    = []string{"Nombre", "Name"}
	taskDescKeys     = []string{"Descripción", "Description"}
	taskStatusKeys   = []string{"Estado", "Status"}
	taskPriorityKeys = []string{"Prioridad", "Priority"}
	taskDueKeys      = []string{"Fecha", "Due Date", "Fecha límite"}
	taskProjectKeys  = []string{"Proyectos", "Project", "Proyecto"}
)

// TaskFromRecord decodes a store record into a Task. Missing properties
// fall back to domain defaults.
func TaskFromRecord(rec Record) Task {
	start, _ := decodeDate(rec.Properties, taskDueKeys)
	return Task{
		ID:          rec.ID,
		URL:         rec.URL,
		Title:       decodeTitle(rec.Properties, taskTitleKeys),
		Description: decodeRichText(rec.Properties, taskDescKeys),
		Status:      ParseTaskStatus(decodeStatus(rec.Properties, taskStatusKeys)),
		Priority:    ParseTaskPriority(decodeSelect(rec.Properties, taskPriorityKeys)),
		DueDate:     start,
		ProjectIDs:  decodeRelation(rec.Properties, taskProjectKeys),
		CreatedTime: rec.CreatedTime,
	}
}

// Properties encodes the task for a full replace-on-write. Title,
// description and due date are omitted when empty; status, priority and
// the project relation are always emitted so they can be cleared.
func (t Task) Properties() ([]byte, error) {
	b := newPropertyBuilder()
	if t.Title != "" {
		b.Title("Nombre", t.Title)
	}
	if t.Description != "" {
		b.RichText("Descripción", t.Description)
	}
	b.Status("Estado", string(t.Status))
	b.Select("Prioridad", string(t.Priority))
	if t.DueDate != "" {
		b.Date("Fecha", t.DueDate, "")
	}
	b.Relation("Proyectos", t.ProjectIDs)
	return b.Build()
}
