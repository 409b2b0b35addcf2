package notion

import (
	"context"
	"strings"
	"time"
)

// ProjectsService owns all project operations against the projects
// database.
type ProjectsService struct {
	client     *Client
	databaseID string
}

func NewProjectsService(client *Client, databaseID string) (*ProjectsService, error) {
	if client == nil {
		return nil, validationErrorf("client is required")
	}
	cleanID, err := ValidateDatabaseID(databaseID)
	if err != nil {
		return nil, err
	}
	return &ProjectsService{client: client, databaseID: cleanID}, nil
}

// List returns projects newest-first.
func (s *ProjectsService) List(ctx context.Context) ([]Project, error) {
	records, err := s.client.QueryDatabase(ctx, s.databaseID, "", createdTimeSortDesc)
	if err != nil {
		return nil, err
	}
	projects := make([]Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, ProjectFromRecord(rec))
	}
	return projects, nil
}

func (s *ProjectsService) Get(ctx context.Context, projectID string) (Project, error) {
	rec, err := s.client.GetPage(ctx, projectID)
	if err != nil {
		return Project{}, err
	}
	return ProjectFromRecord(rec), nil
}

func (s *ProjectsService) Create(ctx context.Context, p Project) (Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Project{}, validationErrorf("project name is required")
	}
	props, err := p.Properties()
	if err != nil {
		return Project{}, err
	}
	rec, err := s.client.CreatePage(ctx, s.databaseID, props)
	if err != nil {
		return Project{}, err
	}
	return ProjectFromRecord(rec), nil
}

// Update writes the project as-is. The progress/status coupling is not
// enforced here; UpdateProgress is the single entry point for that rule.
func (s *ProjectsService) Update(ctx context.Context, p Project) (Project, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Project{}, validationErrorf("project id is required")
	}
	props, err := p.Properties()
	if err != nil {
		return Project{}, err
	}
	rec, err := s.client.UpdatePage(ctx, p.ID, props)
	if err != nil {
		return Project{}, err
	}
	return ProjectFromRecord(rec), nil
}

// SetStatus changes a project's status. Marking it Completado stamps the
// end date and pushes progress to 100.
func (s *ProjectsService) SetStatus(ctx context.Context, projectID string, status ProjectStatus) (Project, error) {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return Project{}, err
	}
	p.Status = status
	if status == ProjectStatusDone {
		p.Progress = 100
		if p.EndDate == "" {
			p.EndDate = time.Now().Format("2006-01-02")
		}
	}
	return s.Update(ctx, p)
}

// UpdateProgress sets the progress percentage. Reaching 100 forces the
// status to Completado and stamps the end date.
func (s *ProjectsService) UpdateProgress(ctx context.Context, projectID string, progress int) (Project, error) {
	if progress < 0 || progress > 100 {
		return Project{}, validationErrorf("progress must be between 0 and 100, got %d", progress)
	}
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return Project{}, err
	}
	p.Progress = progress
	if progress == 100 && p.Status != ProjectStatusDone {
		p.Status = ProjectStatusDone
		if p.EndDate == "" {
			p.EndDate = time.Now().Format("2006-01-02")
		}
	}
	return s.Update(ctx, p)
}
