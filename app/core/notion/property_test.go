package notion

import (
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func TestTaskPropertiesRoundTrip(t *testing.T) {
	original := Task{
		Title:       "Comprar vitaminas",
		Description: "Farmacia del centro",
		Status:      TaskStatusInProgress,
		Priority:    TaskPriorityHigh,
		DueDate:     "2025-06-15",
		ProjectIDs:  []string{"12345678-90ab-cdef-1234-567890abcdef"},
	}
	props, err := original.Properties()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded := TaskFromRecord(Record{ID: "page-1", Properties: props})
	if decoded.Title != original.Title {
		t.Fatalf("title: got %q, want %q", decoded.Title, original.Title)
	}
	if decoded.Description != original.Description {
		t.Fatalf("description: got %q, want %q", decoded.Description, original.Description)
	}
	if decoded.Status != original.Status {
		t.Fatalf("status: got %q, want %q", decoded.Status, original.Status)
	}
	if decoded.Priority != original.Priority {
		t.Fatalf("priority: got %q, want %q", decoded.Priority, original.Priority)
	}
	if decoded.DueDate != original.DueDate {
		t.Fatalf("due date: got %q, want %q", decoded.DueDate, original.DueDate)
	}
	if !reflect.DeepEqual(decoded.ProjectIDs, original.ProjectIDs) {
		t.Fatalf("projects: got %v, want %v", decoded.ProjectIDs, original.ProjectIDs)
	}
}

func TestTaskPropertiesEmptyTask(t *testing.T) {
	props, err := Task{Status: TaskStatusNotStarted, Priority: TaskPriorityMedium}.Properties()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	doc := gjson.ParseBytes(props)

	// Empty title, description and date stay out of the document.
	for _, key := range []string{"Nombre", "Descripción", "Fecha"} {
		if doc.Get(escapePath(key)).Exists() {
			t.Fatalf("expected %s to be omitted, got %s", key, doc.Get(escapePath(key)).Raw)
		}
	}
	// Status, priority and the relation are always present.
	if doc.Get("Estado.status.name").String() != "Sin empezar" {
		t.Fatalf("unexpected status: %s", doc.Get("Estado").Raw)
	}
	if doc.Get("Prioridad.select.name").String() != "Media" {
		t.Fatalf("unexpected priority: %s", doc.Get("Prioridad").Raw)
	}
	rel := doc.Get("Proyectos.relation")
	if !rel.IsArray() || len(rel.Array()) != 0 {
		t.Fatalf("expected empty relation array, got %s", rel.Raw)
	}
}

func TestTaskFromRecordAliasKeys(t *testing.T) {
	props := []byte(`{
		"Name": {"title": [{"text": {"content": "Review notes"}}]},
		"Status": {"select": {"name": "En curso"}},
		"Priority": {"select": {"name": "Alta"}},
		"Due Date": {"date": {"start": "2025-03-01"}}
	}`)
	task := TaskFromRecord(Record{Properties: props})
	if task.Title != "Review notes" {
		t.Fatalf("title via alias: got %q", task.Title)
	}
	if task.Status != TaskStatusInProgress {
		t.Fatalf("status via select fallback: got %q", task.Status)
	}
	if task.Priority != TaskPriorityHigh {
		t.Fatalf("priority via alias: got %q", task.Priority)
	}
	if task.DueDate != "2025-03-01" {
		t.Fatalf("due date via alias: got %q", task.DueDate)
	}
}

func TestTaskFromRecordMissingProperties(t *testing.T) {
	task := TaskFromRecord(Record{Properties: []byte(`{}`)})
	if task.Status != TaskStatusNotStarted {
		t.Fatalf("expected default status, got %q", task.Status)
	}
	if task.Priority != TaskPriorityMedium {
		t.Fatalf("expected default priority, got %q", task.Priority)
	}
	if task.Title != "" || task.DueDate != "" || task.ProjectIDs != nil {
		t.Fatalf("expected zero values, got %+v", task)
	}
}

func TestTitleJoinsTextRuns(t *testing.T) {
	props := []byte(`{
		"Nombre": {"title": [
			{"text": {"content": "Estudiar "}},
			{"text": {"content": "capítulo 5"}}
		]}
	}`)
	if got := decodeTitle(props, taskTitleKeys); got != "Estudiar capítulo 5" {
		t.Fatalf("got %q", got)
	}
}

func TestRelationSkipsEmptyIDs(t *testing.T) {
	b := newPropertyBuilder()
	b.Relation("Proyectos", []string{"", "id-1", "", "id-2"})
	props, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ids := decodeRelation(props, []string{"Proyectos"})
	if !reflect.DeepEqual(ids, []string{"id-1", "id-2"}) {
		t.Fatalf("got %v", ids)
	}
}

func TestDateWithoutStartIsNull(t *testing.T) {
	b := newPropertyBuilder()
	b.Date("Fechas", "", "2025-12-31")
	props, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if gjson.GetBytes(props, "Fechas.date").Type != gjson.Null {
		t.Fatalf("expected null date, got %s", gjson.GetBytes(props, "Fechas").Raw)
	}
}

func TestProjectPropertiesRoundTrip(t *testing.T) {
	original := Project{
		Name:      "Universidad",
		Status:    ProjectStatusActive,
		StartDate: "2025-01-10",
		EndDate:   "2025-06-30",
		Progress:  40,
	}
	props, err := original.Properties()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded := ProjectFromRecord(Record{Properties: props})
	if decoded.Name != original.Name {
		t.Fatalf("name: got %q", decoded.Name)
	}
	if decoded.Status != original.Status {
		t.Fatalf("status: got %q", decoded.Status)
	}
	if decoded.StartDate != original.StartDate || decoded.EndDate != original.EndDate {
		t.Fatalf("dates: got %q/%q", decoded.StartDate, decoded.EndDate)
	}
	if decoded.Progress != original.Progress {
		t.Fatalf("progress: got %d", decoded.Progress)
	}
}
