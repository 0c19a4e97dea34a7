package main

import (
	"errors"
	"net/http"

	"portfolio/constants"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// stripSecret returns a shallow copy of the settings document without the
// admin password. The stored document is never modified; only responses are.
func stripSecret(data Settings) Settings {
	public := make(Settings, len(data))
	for key, value := range data {
		if key == "admin_password" {
			continue
		}
		public[key] = value
	}
	return public
}

// GetData handles GET /api/data: the full settings document minus the
// admin password.
func GetData(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadSettings()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to load data: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stripSecret(data))
}

// ServeDataJSON handles GET /data.json, a public mirror of GetData.
func ServeDataJSON(w http.ResponseWriter, r *http.Request) {
	GetData(w, r)
}

// UpdateData handles POST /api/data: wholesale replacement of the settings
// document. The stored password always survives, regardless of what the
// client submitted.
func UpdateData(w http.ResponseWriter, r *http.Request) {
	submitted, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		if password, ok := data["admin_password"]; ok {
			submitted["admin_password"] = password
		}
		return submitted, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to update data: "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, "Data updated")
}

// UpdateProfile handles POST /api/profile. Fields submitted empty or
// omitted keep their stored values.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	partial, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		applyProfileUpdate(data, partial)
		return data, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to update profile: "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, "Profile updated")
}

// UpdateSkills handles POST /api/skills: the skills list is replaced
// wholesale from the submitted {skills: [...]} body.
func UpdateSkills(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	skills, ok := body["skills"].([]any)
	if !ok {
		skills = []any{}
	}

	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		data["skills"] = skills
		return data, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to update skills: "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, "Skills updated")
}

// GetProjects handles GET /api/projects.
func GetProjects(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadSettings()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to load projects: "+err.Error())
		return
	}
	projects, ok := data["projects"].([]any)
	if !ok {
		projects = []any{}
	}
	respondJSON(w, http.StatusOK, projects)
}

// AddProject handles POST /api/projects. A fresh id is assigned; whatever
// id the client sent is discarded.
func AddProject(w http.ResponseWriter, r *http.Request) {
	project, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	project["id"] = uuid.New().String()
	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		projects, _ := data["projects"].([]any)
		data["projects"] = append(projects, project)
		return data, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to add project: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Project added",
		"project": project,
	})
}

// UpdateProject handles PUT /api/projects/{projectID}: wholesale
// replacement of the project keyed by id. The id itself is immutable.
func UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	submitted, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		projects, _ := data["projects"].([]any)
		for i, entry := range projects {
			project, ok := entry.(map[string]any)
			if !ok || project["id"] != projectID {
				continue
			}
			submitted["id"] = projectID
			projects[i] = submitted
			data["projects"] = projects
			return data, nil
		}
		return nil, ErrNotFound
	})
	if errors.Is(err, ErrNotFound) {
		respondMessage(w, http.StatusNotFound, false, "Project not found")
		return
	}
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to update project: "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, "Project updated")
}

// DeleteProject handles DELETE /api/projects/{projectID}.
func DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	err := store.UpdateSettings(func(data Settings) (Settings, error) {
		projects, _ := data["projects"].([]any)
		kept := make([]any, 0, len(projects))
		for _, entry := range projects {
			if project, ok := entry.(map[string]any); ok && project["id"] == projectID {
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == len(projects) {
			return nil, ErrNotFound
		}
		data["projects"] = kept
		return data, nil
	})
	if errors.Is(err, ErrNotFound) {
		respondMessage(w, http.StatusNotFound, false, "Project not found")
		return
	}
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to delete project: "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, "Project deleted")
}

// GetTheme handles GET /api/theme.
func GetTheme(w http.ResponseWriter, r *http.Request) {
	respondSection(w, "theme", nil)
}

// UpdateTheme handles POST /api/theme (shallow merge).
func UpdateTheme(w http.ResponseWriter, r *http.Request) {
	updateSection(w, r, "theme", "Theme updated")
}

// GetLayout handles GET /api/layout.
func GetLayout(w http.ResponseWriter, r *http.Request) {
	respondSection(w, "layout", nil)
}

// UpdateLayout handles POST /api/layout (shallow merge).
func UpdateLayout(w http.ResponseWriter, r *http.Request) {
	updateSection(w, r, "layout", "Layout updated")
}

// GetAdminTheme handles GET /api/admin-theme. A never-configured admin
// theme falls back to the documented default palette.
func GetAdminTheme(w http.ResponseWriter, r *http.Request) {
	respondSection(w, "admin_theme", defaultAdminTheme())
}

// UpdateAdminTheme handles POST /api/admin-theme (shallow merge).
func UpdateAdminTheme(w http.ResponseWriter, r *http.Request) {
	updateSection(w, r, "admin_theme", "Admin theme updated")
}

func respondSection(w http.ResponseWriter, section string, fallback map[string]any) {
	data, err := store.LoadSettings()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to load settings: "+err.Error())
		return
	}
	if m, ok := data[section].(map[string]any); ok {
		respondJSON(w, http.StatusOK, m)
		return
	}
	if fallback == nil {
		fallback = map[string]any{}
	}
	respondJSON(w, http.StatusOK, fallback)
}

func updateSection(w http.ResponseWriter, r *http.Request, section, okMessage string) {
	partial, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		shallowMerge(sectionMap(data, section), partial)
		return data, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to update "+section+": "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, okMessage)
}

// GetStats handles GET /api/stats (admin only).
func GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.LoadStats()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to load stats: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Login handles POST /api/login. The submitted password is checked against
// the one stored in the settings document; a match issues a session cookie.
func Login(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	data, err := store.LoadSettings()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to load settings: "+err.Error())
		return
	}

	password, _ := body["password"].(string)
	stored, _ := data["admin_password"].(string)
	if stored == "" || password != stored {
		respondMessage(w, http.StatusUnauthorized, false, "Wrong password")
		return
	}

	token, err := sessions.Create()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to create session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	respondMessage(w, http.StatusOK, true, "Logged in")
}

// Logout handles POST /api/logout.
func Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		sessions.Revoke(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	respondMessage(w, http.StatusOK, true, "Logged out")
}

// ChangePassword handles POST /api/password. The old password must match
// and the new one must meet the minimum length before anything is stored.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	oldPassword, _ := body["old_password"].(string)
	newPassword, _ := body["new_password"].(string)

	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		stored, _ := data["admin_password"].(string)
		if oldPassword != stored {
			return nil, ErrWrongPassword
		}
		if len(newPassword) < constants.MIN_PASSWORD_LENGTH {
			return nil, ErrWeakPassword
		}
		data["admin_password"] = newPassword
		return data, nil
	})
	switch {
	case errors.Is(err, ErrWrongPassword):
		respondMessage(w, http.StatusBadRequest, false, "Old password is incorrect")
	case errors.Is(err, ErrWeakPassword):
		respondMessage(w, http.StatusBadRequest, false, "New password must be at least 6 characters")
	case err != nil:
		respondMessage(w, http.StatusInternalServerError, false, "Failed to change password: "+err.Error())
	default:
		respondMessage(w, http.StatusOK, true, "Password changed")
	}
}
