package notion

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/sjson"
)

const createdTimeSortDesc = `[{"timestamp":"created_time","direction":"descending"}]`

// TasksService owns all task operations against the tasks database.
type TasksService struct {
	client     *Client
	databaseID string
}

func NewTasksService(client *Client, databaseID string) (*TasksService, error) {
	if client == nil {
		return nil, validationErrorf("client is required")
	}
	cleanID, err := ValidateDatabaseID(databaseID)
	if err != nil {
		return nil, err
	}
	return &TasksService{client: client, databaseID: cleanID}, nil
}

// List returns tasks newest-first. filterJSON may be empty for a full
// listing. Records that fail to decode are skipped, not fatal.
func (s *TasksService) List(ctx context.Context, filterJSON string) ([]Task, error) {
	records, err := s.client.QueryDatabase(ctx, s.databaseID, filterJSON, createdTimeSortDesc)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, TaskFromRecord(rec))
	}
	return tasks, nil
}

// Create persists a new task and decodes the store's response to confirm
// the assigned identifier.
func (s *TasksService) Create(ctx context.Context, t Task) (Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return Task{}, validationErrorf("task title is required")
	}
	props, err := t.Properties()
	if err != nil {
		return Task{}, err
	}
	rec, err := s.client.CreatePage(ctx, s.databaseID, props)
	if err != nil {
		return Task{}, err
	}
	return TaskFromRecord(rec), nil
}

// Update performs a full-property replace on an existing task.
func (s *TasksService) Update(ctx context.Context, t Task) (Task, error) {
	if strings.TrimSpace(t.ID) == "" {
		return Task{}, validationErrorf("task id is required")
	}
	props, err := t.Properties()
	if err != nil {
		return Task{}, err
	}
	rec, err := s.client.UpdatePage(ctx, t.ID, props)
	if err != nil {
		return Task{}, err
	}
	return TaskFromRecord(rec), nil
}

func (s *TasksService) Get(ctx context.Context, taskID string) (Task, error) {
	rec, err := s.client.GetPage(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	return TaskFromRecord(rec), nil
}

// Filter builders for the query path.

func FilterTasksByStatus(status TaskStatus) string {
	f, _ := sjson.Set(`{}`, "property", "Estado")
	f, _ = sjson.Set(f, "status.equals", string(status))
	return f
}

func FilterTasksByPriority(priority TaskPriority) string {
	f, _ := sjson.Set(`{}`, "property", "Prioridad")
	f, _ = sjson.Set(f, "select.equals", string(priority))
	return f
}

func FilterTasksByProject(projectID string) string {
	f, _ := sjson.Set(`{}`, "property", "Proyectos")
	f, _ = sjson.Set(f, "relation.contains", projectID)
	return f
}

// FilterOverdueTasks matches tasks due before now and not completed.
func FilterOverdueTasks(now time.Time) string {
	f, _ := sjson.Set(`{}`, "and.0.property", "Fecha")
	f, _ = sjson.Set(f, "and.0.date.before", now.Format("2006-01-02"))
	f, _ = sjson.Set(f, "and.1.property", "Estado")
	f, _ = sjson.Set(f, "and.1.status.does_not_equal", string(TaskStatusDone))
	return f
}
