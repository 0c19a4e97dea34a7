package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"portfolio/constants"

	"github.com/google/uuid"
)

// DocumentStore owns the three on-disk JSON documents (settings, stats,
// file registry). Every mutation runs as one load-modify-save unit under a
// per-document mutex, so concurrent writers to the same document cannot
// lose each other's updates. Saves go through a temp file and rename so a
// concurrent load never sees a half-written document.
type DocumentStore struct {
	dir   string
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDocumentStore opens (and on first boot seeds) the documents under dir.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	s := &DocumentStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}
	if err := s.seedMissing(); err != nil {
		return nil, err
	}
	return s, nil
}

// lock returns the mutex guarding the named document, creating it on first use.
func (s *DocumentStore) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mu, ok := s.locks[name]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	s.locks[name] = mu
	return mu
}

func (s *DocumentStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *DocumentStore) seedMissing() error {
	seeds := map[string]any{
		constants.DATA_FILE:  defaultSettings(),
		constants.STATS_FILE: defaultStats(),
		constants.FILES_FILE: []FileRecord{},
	}
	for name, value := range seeds {
		if _, err := os.Stat(s.path(name)); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("checking %s: %w", name, err)
		}
		if err := s.writeDocument(name, value); err != nil {
			return err
		}
	}
	return nil
}

// readDocument decodes the named document into out. A missing file is
// reported as os.ErrNotExist; malformed bytes surface as ErrCorruptDocument
// rather than being silently reset.
func (s *DocumentStore) readDocument(name string, out any) error {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptDocument, name, err)
	}
	return nil
}

func (s *DocumentStore) writeDocument(name string, value any) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func (s *DocumentStore) loadSettingsLocked() (Settings, error) {
	var data Settings
	if err := s.readDocument(constants.DATA_FILE, &data); err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, err
	}
	return data, nil
}

// LoadSettings returns the settings document, including the admin password.
// Callers on a public read path must strip it before responding.
func (s *DocumentStore) LoadSettings() (Settings, error) {
	mu := s.lock(constants.DATA_FILE)
	mu.Lock()
	defer mu.Unlock()
	return s.loadSettingsLocked()
}

// UpdateSettings runs fn inside the settings document's load-modify-save
// unit. fn returns the document to persist; returning the received map
// mutated in place is fine. Any error from fn aborts without writing.
func (s *DocumentStore) UpdateSettings(fn func(Settings) (Settings, error)) error {
	mu := s.lock(constants.DATA_FILE)
	mu.Lock()
	defer mu.Unlock()
	data, err := s.loadSettingsLocked()
	if err != nil {
		return err
	}
	next, err := fn(data)
	if err != nil {
		return err
	}
	return s.writeDocument(constants.DATA_FILE, next)
}

// LoadStats returns the visit-statistics document.
func (s *DocumentStore) LoadStats() (*Stats, error) {
	mu := s.lock(constants.STATS_FILE)
	mu.Lock()
	defer mu.Unlock()
	return s.loadStatsLocked()
}

func (s *DocumentStore) loadStatsLocked() (*Stats, error) {
	var stats Stats
	if err := s.readDocument(constants.STATS_FILE, &stats); err != nil {
		if os.IsNotExist(err) {
			return defaultStats(), nil
		}
		return nil, err
	}
	return &stats, nil
}

// UpdateStats runs fn inside the stats document's load-modify-save unit.
func (s *DocumentStore) UpdateStats(fn func(*Stats) error) error {
	mu := s.lock(constants.STATS_FILE)
	mu.Lock()
	defer mu.Unlock()
	stats, err := s.loadStatsLocked()
	if err != nil {
		return err
	}
	if err := fn(stats); err != nil {
		return err
	}
	return s.writeDocument(constants.STATS_FILE, stats)
}

// LoadFiles returns the file registry.
func (s *DocumentStore) LoadFiles() ([]FileRecord, error) {
	mu := s.lock(constants.FILES_FILE)
	mu.Lock()
	defer mu.Unlock()
	return s.loadFilesLocked()
}

func (s *DocumentStore) loadFilesLocked() ([]FileRecord, error) {
	var files []FileRecord
	if err := s.readDocument(constants.FILES_FILE, &files); err != nil {
		if os.IsNotExist(err) {
			return []FileRecord{}, nil
		}
		return nil, err
	}
	if files == nil {
		files = []FileRecord{}
	}
	return files, nil
}

// UpdateFiles runs fn inside the registry's load-modify-save unit. fn
// returns the registry to persist.
func (s *DocumentStore) UpdateFiles(fn func([]FileRecord) ([]FileRecord, error)) error {
	mu := s.lock(constants.FILES_FILE)
	mu.Lock()
	defer mu.Unlock()
	files, err := s.loadFilesLocked()
	if err != nil {
		return err
	}
	next, err := fn(files)
	if err != nil {
		return err
	}
	return s.writeDocument(constants.FILES_FILE, next)
}

func defaultSettings() Settings {
	return Settings{
		"profile": map[string]any{
			"name":     "Your Name",
			"title":    "Frontend Developer / Full-Stack Engineer",
			"avatar":   "/static/uploads/default-avatar.png",
			"bio":      "Hi! I'm a developer who loves building great web applications.",
			"email":    "your.email@example.com",
			"github":   "https://github.com/yourusername",
			"location": "Earth",
		},
		"skills": []any{
			map[string]any{"name": "HTML/CSS", "level": 90},
			map[string]any{"name": "JavaScript", "level": 85},
			map[string]any{"name": "Python", "level": 80},
			map[string]any{"name": "React", "level": 75},
		},
		"projects": []any{
			map[string]any{
				"id":          uuid.New().String(),
				"title":       "Sample Project",
				"description": "An example project to get you started.",
				"image":       "/static/uploads/default-project.png",
				"link":        "#",
				"tags":        []any{"Web", "Frontend"},
			},
		},
		"admin_password": constants.DEFAULT_ADMIN_PASSWORD,
		"theme": map[string]any{
			"background_image":     "",
			"background_type":      "gradient",
			"background_color":     "#667eea",
			"background_color_end": "#764ba2",
			"cursor_style":         "default",
		},
		"layout": map[string]any{
			"modules":      []any{"hero", "skills", "projects", "files"},
			"module_order": []any{"hero", "skills", "projects", "files"},
		},
	}
}

func defaultStats() *Stats {
	return &Stats{
		Visits:      0,
		LastVisit:   nil,
		VisitorLogs: []VisitorLog{},
	}
}

func defaultAdminTheme() map[string]any {
	return map[string]any{
		"primary_color":        "#6366f1",
		"sidebar_bg":           "#1f2937",
		"sidebar_text":         "#ffffff",
		"content_bg":           "#f9fafb",
		"card_bg":              "#ffffff",
		"background_type":      "gradient",
		"background_color":     "#1f2937",
		"background_color_end": "#374151",
	}
}
