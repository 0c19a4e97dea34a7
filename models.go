package main

import "errors"

// Settings is the singleton settings document (profile, skills, projects,
// theme, layout, modules, admin password). It deliberately stays an open
// map: the admin UI is free to introduce keys the server never enumerates,
// and the section merge policies must preserve them.
type Settings = map[string]any

// FileRecord describes one uploaded downloadable resource. The registry
// (files.json) is a flat list of these; the record is the source of truth
// for the backing binary.
type FileRecord struct {
	ID           string  `json:"id"`
	OriginalName string  `json:"original_name"`
	Filename     string  `json:"filename"`
	RelativePath string  `json:"relative_path"`
	Folder       *string `json:"folder"`
	Description  string  `json:"description"`
	Size         int64   `json:"size"`
	UploadDate   string  `json:"upload_date"`
	Type         string  `json:"type"`
	Downloads    int     `json:"downloads"`
}

// Stats is the visit-statistics document (stats.json).
type Stats struct {
	Visits      int          `json:"visits"`
	LastVisit   *string      `json:"last_visit"`
	VisitorLogs []VisitorLog `json:"visitor_logs"`
}

// VisitorLog is one entry in the bounded ring of recent visitors.
type VisitorLog struct {
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
	UserAgent string `json:"user_agent"`
}

// MissingFile identifies a registry record whose backing binary is absent.
type MissingFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

var (
	ErrNoData          = errors.New("no data provided")
	ErrNotFound        = errors.New("not found")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrWrongPassword   = errors.New("wrong password")
	ErrWeakPassword    = errors.New("password too short")
	ErrCorruptDocument = errors.New("corrupt document")
)
