// Package directory maintains the cached name-to-identifier mapping for
// projects, with exact and fuzzy resolution.
package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"elias/app/core/notion"
	"elias/app/pkg/logger"
)

const DefaultTTL = 5 * time.Minute

type entry struct {
	name string
	id   string
}

type snapshot struct {
	entries  []entry
	nameByID map[string]string
	loadedAt time.Time
}

// Directory caches the project listing and resolves names to ids. The
// cache is rebuilt wholesale on expiry; a failed reload degrades to the
// stale snapshot when one exists.
type Directory struct {
	projects *notion.ProjectsService
	ttl      time.Duration

	mu   sync.RWMutex
	snap *snapshot
}

func New(projects *notion.ProjectsService, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Directory{projects: projects, ttl: ttl}
}

// Resolve maps a project name to its identifier. Exact case-insensitive
// match wins; otherwise substring containment in either direction, first
// match in listing order. A reload failure resolves as not found.
func (d *Directory) Resolve(ctx context.Context, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	snap := d.current(ctx)
	if snap == nil {
		return "", false
	}

	lower := strings.ToLower(name)
	for _, e := range snap.entries {
		if strings.ToLower(e.name) == lower {
			return e.id, true
		}
	}
	for _, e := range snap.entries {
		entryLower := strings.ToLower(e.name)
		if strings.Contains(entryLower, lower) || strings.Contains(lower, entryLower) {
			return e.id, true
		}
	}
	return "", false
}

// Names returns the cached project names in listing order, for prompt
// building.
func (d *Directory) Names(ctx context.Context) []string {
	snap := d.current(ctx)
	if snap == nil {
		return nil
	}
	names := make([]string, 0, len(snap.entries))
	for _, e := range snap.entries {
		names = append(names, e.name)
	}
	return names
}

// NameByID maps an identifier back to its project name, with a stable
// fallback label for unknown ids.
func (d *Directory) NameByID(ctx context.Context, projectID string) string {
	snap := d.current(ctx)
	if snap != nil {
		if name, ok := snap.nameByID[projectID]; ok {
			return name
		}
	}
	return fallbackName(projectID)
}

// Invalidate forces the next call to reload.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	d.snap = nil
	d.mu.Unlock()
}

// current returns a fresh snapshot, reloading synchronously when the TTL
// has expired. Concurrent readers keep the stale snapshot until the swap.
func (d *Directory) current(ctx context.Context) *snapshot {
	d.mu.RLock()
	snap := d.snap
	d.mu.RUnlock()

	if snap != nil && time.Since(snap.loadedAt) < d.ttl {
		return snap
	}

	fresh, err := d.load(ctx)
	if err != nil {
		logger.Error("Project directory reload failed: %v", err)
		return snap
	}

	d.mu.Lock()
	d.snap = fresh
	d.mu.Unlock()
	return fresh
}

func (d *Directory) load(ctx context.Context) (*snapshot, error) {
	// A nil service means no projects database is configured; the
	// directory stays empty and every lookup misses.
	if d.projects == nil {
		return &snapshot{nameByID: map[string]string{}, loadedAt: time.Now()}, nil
	}
	projects, err := d.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{
		entries:  make([]entry, 0, len(projects)),
		nameByID: make(map[string]string, len(projects)),
		loadedAt: time.Now(),
	}
	for _, p := range projects {
		if p.ID == "" {
			continue
		}
		name := p.Name
		if name == "" {
			name = fallbackName(p.ID)
		}
		snap.entries = append(snap.entries, entry{name: name, id: p.ID})
		snap.nameByID[p.ID] = name
	}
	logger.Info("Project directory loaded: %d projects", len(snap.entries))
	return snap, nil
}

func fallbackName(projectID string) string {
	short := projectID
	if len(short) > 8 {
		short = short[:8]
	}
	return "Proyecto_" + short
}
