package notion

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func newTestServices(t *testing.T, handler http.HandlerFunc) (*TasksService, *ProjectsService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{Token: "secret", APIRoot: server.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	tasks, err := NewTasksService(client, strings.Repeat("a", 32))
	if err != nil {
		t.Fatalf("tasks service: %v", err)
	}
	projects, err := NewProjectsService(client, strings.Repeat("b", 32))
	if err != nil {
		t.Fatalf("projects service: %v", err)
	}
	return tasks, projects, server
}

func TestTasksCreateRejectsEmptyTitle(t *testing.T) {
	tasks, _, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := tasks.Create(context.Background(), Task{Title: "   "})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTasksCreateConfirmsAssignedID(t *testing.T) {
	tasks, _, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pages" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{
			"id": "12345678-90ab-cdef-1234-567890abcdef",
			"url": "https://x/created",
			"properties": {"Nombre": {"title": [{"text": {"content": "Comprar pan"}}]}}
		}`))
	})
	created, err := tasks.Create(context.Background(), Task{Title: "Comprar pan"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "12345678-90ab-cdef-1234-567890abcdef" {
		t.Fatalf("unexpected id: %s", created.ID)
	}
	if created.Title != "Comprar pan" {
		t.Fatalf("unexpected title: %s", created.Title)
	}
}

func TestTasksListSortsNewestFirst(t *testing.T) {
	tasks, _, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sorts := gjson.GetBytes(body, "sorts")
		if sorts.Get("0.timestamp").String() != "created_time" || sorts.Get("0.direction").String() != "descending" {
			t.Fatalf("unexpected sorts: %s", sorts.Raw)
		}
		w.Write([]byte(`{"results": []}`))
	})
	if _, err := tasks.List(context.Background(), ""); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestFilterBuilders(t *testing.T) {
	f := FilterTasksByStatus(TaskStatusDone)
	if gjson.Get(f, "property").String() != "Estado" || gjson.Get(f, "status.equals").String() != "Completado" {
		t.Fatalf("status filter: %s", f)
	}

	f = FilterTasksByPriority(TaskPriorityUrgent)
	if gjson.Get(f, "property").String() != "Prioridad" || gjson.Get(f, "select.equals").String() != "Urgente" {
		t.Fatalf("priority filter: %s", f)
	}

	f = FilterTasksByProject("proj-1")
	if gjson.Get(f, "relation.contains").String() != "proj-1" {
		t.Fatalf("project filter: %s", f)
	}

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f = FilterOverdueTasks(now)
	if gjson.Get(f, "and.0.date.before").String() != "2025-06-15" {
		t.Fatalf("overdue date clause: %s", f)
	}
	if gjson.Get(f, "and.1.status.does_not_equal").String() != "Completado" {
		t.Fatalf("overdue status clause: %s", f)
	}
}

func TestProjectsUpdateProgress(t *testing.T) {
	pageID := "12345678-90ab-cdef-1234-567890abcdef"
	var patched []byte
	_, projects, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`{
				"id": "` + pageID + `",
				"properties": {
					"Nombre": {"title": [{"text": {"content": "Universidad"}}]},
					"Estado": {"select": {"name": "Activo"}},
					"Progreso": {"number": 40}
				}
			}`))
		case r.Method == http.MethodPatch:
			patched, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{
				"id": "` + pageID + `",
				"properties": {
					"Estado": {"select": {"name": "Completado"}},
					"Progreso": {"number": 100}
				}
			}`))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	updated, err := projects.UpdateProgress(context.Background(), pageID, 100)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if updated.Status != ProjectStatusDone {
		t.Fatalf("expected Completado, got %q", updated.Status)
	}

	// Reaching 100 must write the forced status and stamp an end date.
	props := gjson.GetBytes(patched, "properties")
	if gjson.GetBytes(patched, "properties.Estado.select.name").String() != "Completado" {
		t.Fatalf("patched status: %s", props.Raw)
	}
	if gjson.GetBytes(patched, "properties.Progreso.number").Int() != 100 {
		t.Fatalf("patched progress: %s", props.Raw)
	}
}

func TestProjectsUpdateProgressRange(t *testing.T) {
	_, projects, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	for _, progress := range []int{-1, 101} {
		_, err := projects.UpdateProgress(context.Background(), "12345678-90ab-cdef-1234-567890abcdef", progress)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("progress %d: expected ValidationError, got %v", progress, err)
		}
	}
}
