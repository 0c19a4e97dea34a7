package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"portfolio/constants"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testServer *httptest.Server

// TestMain boots the full router against a throwaway data directory so the
// API tests exercise the same wiring as production.
func TestMain(m *testing.M) {
	initConfig()

	dir, err := os.MkdirTemp("", "portfolio-test-")
	if err != nil {
		log.Fatalf("Failed to create test dir: %v", err)
	}
	viper.Set("storage.data_dir", dir)
	viper.Set("storage.static_dir", filepath.Join(dir, "static"))
	viper.Set("storage.upload_dir", filepath.Join(dir, "static", "uploads"))
	viper.Set("storage.files_dir", filepath.Join(dir, "static", "files"))
	// Every test logs in with its own client; the production brute-force
	// limit would starve the suite.
	viper.Set("limits.login_per_minute", 10000)

	store, err = NewDocumentStore(dir)
	if err != nil {
		log.Fatalf("Failed to open test store: %v", err)
	}
	sessions, err = NewSessionStore(constants.MAX_SESSIONS, time.Hour)
	if err != nil {
		log.Fatalf("Failed to create test session store: %v", err)
	}

	testServer = httptest.NewServer(initRouter())

	code := m.Run()

	testServer.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// adminClient returns a client holding a fresh authenticated session.
func adminClient(t *testing.T) *http.Client {
	t.Helper()
	client := newClient(t)
	status, body := postJSON(t, client, "/api/login", map[string]any{"password": constants.DEFAULT_ADMIN_PASSWORD})
	require.Equal(t, http.StatusOK, status, "login failed: %v", body)
	return client
}

func postJSON(t *testing.T, client *http.Client, path string, payload any) (int, map[string]any) {
	t.Helper()
	return sendJSON(t, client, http.MethodPost, path, payload)
}

func sendJSON(t *testing.T, client *http.Client, method, path string, payload any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req, err := http.NewRequest(method, testServer.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func getJSON(t *testing.T, client *http.Client, path string, out any) int {
	t.Helper()
	resp, err := client.Get(testServer.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestPublicDataNeverContainsPassword(t *testing.T) {
	client := newClient(t)
	for _, path := range []string{"/api/data", "/data.json"} {
		var data map[string]any
		status := getJSON(t, client, path, &data)
		assert.Equal(t, http.StatusOK, status, path)
		_, present := data["admin_password"]
		assert.False(t, present, "%s leaked admin_password", path)
		assert.NotNil(t, data["profile"], path)
	}
}

func TestWriteWithoutSessionIsRejected(t *testing.T) {
	client := newClient(t)
	status, body := postJSON(t, client, "/api/profile", map[string]any{"name": "Mallory"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestLoginWrongPassword(t *testing.T) {
	client := newClient(t)
	status, body := postJSON(t, client, "/api/login", map[string]any{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestLoginLogoutPasswordChangeFlow(t *testing.T) {
	client := newClient(t)

	status, _ := postJSON(t, client, "/api/login", map[string]any{"password": "admin123"})
	require.Equal(t, http.StatusOK, status)

	// Too-short replacement is refused and nothing changes.
	status, body := postJSON(t, client, "/api/password", map[string]any{
		"old_password": "admin123",
		"new_password": "ab",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["message"], "at least 6")

	// Wrong old password is refused.
	status, _ = postJSON(t, client, "/api/password", map[string]any{
		"old_password": "wrong",
		"new_password": "newpass1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Valid change succeeds; the old password stops working.
	status, _ = postJSON(t, client, "/api/password", map[string]any{
		"old_password": "admin123",
		"new_password": "newpass1",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = postJSON(t, newClient(t), "/api/login", map[string]any{"password": "admin123"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = postJSON(t, newClient(t), "/api/login", map[string]any{"password": "newpass1"})
	assert.Equal(t, http.StatusOK, status)

	// Restore the default password for the rest of the suite.
	status, _ = postJSON(t, client, "/api/password", map[string]any{
		"old_password": "newpass1",
		"new_password": "admin123",
	})
	require.Equal(t, http.StatusOK, status)

	// Logout invalidates the session.
	status, _ = postJSON(t, client, "/api/logout", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = postJSON(t, client, "/api/profile", map[string]any{"name": "Ada"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestReplaceDataPreservesPassword(t *testing.T) {
	client := adminClient(t)

	replacement := stripSecret(defaultSettings())
	replacement["profile"] = map[string]any{"name": "Replaced"}
	replacement["admin_password"] = "attacker-chosen"
	status, _ := postJSON(t, client, "/api/data", replacement)
	require.Equal(t, http.StatusOK, status)

	// The stored password is the old one, not the submitted one.
	status, _ = postJSON(t, newClient(t), "/api/login", map[string]any{"password": constants.DEFAULT_ADMIN_PASSWORD})
	assert.Equal(t, http.StatusOK, status)

	var data map[string]any
	getJSON(t, client, "/api/data", &data)
	_, present := data["admin_password"]
	assert.False(t, present)
	profile := data["profile"].(map[string]any)
	assert.Equal(t, "Replaced", profile["name"])
}

func TestProfilePartialUpdateKeepsOmittedFields(t *testing.T) {
	client := adminClient(t)

	status, _ := postJSON(t, client, "/api/profile", map[string]any{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, status)

	// Omitting email and submitting name empty must not alter either field.
	status, _ = postJSON(t, client, "/api/profile", map[string]any{"name": "", "title": "Engineer"})
	require.Equal(t, http.StatusOK, status)

	var data map[string]any
	getJSON(t, client, "/api/data", &data)
	profile := data["profile"].(map[string]any)
	assert.Equal(t, "Ada", profile["name"])
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.Equal(t, "Engineer", profile["title"])
}

func TestProfileUpdateEmptyBodyIsRefused(t *testing.T) {
	client := adminClient(t)
	status, body := postJSON(t, client, "/api/profile", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestSkillsReplacedWholesale(t *testing.T) {
	client := adminClient(t)

	status, _ := postJSON(t, client, "/api/skills", map[string]any{
		"skills": []any{map[string]any{"name": "Go", "level": 95}},
	})
	require.Equal(t, http.StatusOK, status)

	var data map[string]any
	getJSON(t, client, "/api/data", &data)
	skills := data["skills"].([]any)
	require.Len(t, skills, 1)
	assert.Equal(t, "Go", skills[0].(map[string]any)["name"])
}

func TestProjectLifecycle(t *testing.T) {
	client := adminClient(t)

	addProject := func(title string) string {
		status, body := postJSON(t, client, "/api/projects", map[string]any{
			"title": title,
			"id":    "client-supplied-ignored",
		})
		require.Equal(t, http.StatusOK, status)
		project := body["project"].(map[string]any)
		id := project["id"].(string)
		require.NotEmpty(t, id)
		require.NotEqual(t, "client-supplied-ignored", id)
		return id
	}

	first := addProject("First")
	second := addProject("Second")
	assert.NotEqual(t, first, second, "project ids must be unique")

	// Full replace keyed by id keeps the id immutable.
	status, _ := sendJSON(t, client, http.MethodPut, "/api/projects/"+first, map[string]any{
		"title": "First (renamed)",
		"id":    "someone-elses-id",
	})
	require.Equal(t, http.StatusOK, status)

	var projects []map[string]any
	getJSON(t, client, "/api/projects", &projects)
	var found bool
	for _, p := range projects {
		if p["id"] == first {
			found = true
			assert.Equal(t, "First (renamed)", p["title"])
		}
	}
	assert.True(t, found)

	status, _ = sendJSON(t, client, http.MethodPut, "/api/projects/ghost", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = sendJSON(t, client, http.MethodDelete, "/api/projects/"+first, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = sendJSON(t, client, http.MethodDelete, "/api/projects/"+first, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestThemeShallowMerge(t *testing.T) {
	client := adminClient(t)

	status, _ := postJSON(t, client, "/api/theme", map[string]any{"background_type": "solid"})
	require.Equal(t, http.StatusOK, status)
	status, _ = postJSON(t, client, "/api/theme", map[string]any{"particles": true})
	require.Equal(t, http.StatusOK, status)

	var theme map[string]any
	getJSON(t, client, "/api/theme", &theme)
	assert.Equal(t, "solid", theme["background_type"])
	assert.Equal(t, true, theme["particles"])
	// Untouched keys survive the merges.
	assert.Equal(t, "#667eea", theme["background_color"])
}

func TestAdminThemeDefaultPalette(t *testing.T) {
	var theme map[string]any
	getJSON(t, newClient(t), "/api/admin-theme", &theme)
	assert.Equal(t, "#6366f1", theme["primary_color"])
}

func TestModuleLifecycle(t *testing.T) {
	client := adminClient(t)

	status, body := postJSON(t, client, "/api/modules", map[string]any{"title": "Guestbook", "content": "say hi"})
	require.Equal(t, http.StatusOK, status)
	module := body["module"].(map[string]any)
	moduleID := module["id"].(string)
	assert.Contains(t, moduleID, constants.CUSTOM_MODULE_PREFIX)
	assert.Equal(t, true, module["visible"])
	assert.NotEmpty(t, module["created_at"])

	orderOf := func() []any {
		var layout map[string]any
		getJSON(t, client, "/api/layout", &layout)
		return layout["module_order"].([]any)
	}
	assert.Contains(t, orderOf(), moduleID)

	// Re-adding the same id must not duplicate the order entry.
	status, _ = postJSON(t, client, "/api/modules", map[string]any{"id": moduleID, "title": "Guestbook"})
	require.Equal(t, http.StatusOK, status)
	count := 0
	for _, id := range orderOf() {
		if id == moduleID {
			count++
		}
	}
	assert.Equal(t, 1, count)

	status, body = sendJSON(t, client, http.MethodPut, "/api/modules/"+moduleID, map[string]any{"content": "welcome"})
	require.Equal(t, http.StatusOK, status)
	updated := body["module"].(map[string]any)
	assert.Equal(t, "welcome", updated["content"])
	assert.NotEmpty(t, updated["updated_at"])

	status, _ = sendJSON(t, client, http.MethodPut, "/api/modules/ghost", map[string]any{"content": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	// Custom delete removes record and order entry.
	status, _ = sendJSON(t, client, http.MethodDelete, "/api/modules/"+moduleID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, orderOf(), moduleID)
	var modules map[string]any
	getJSON(t, client, "/api/modules", &modules)
	_, present := modules[moduleID]
	assert.False(t, present)

	// Built-in delete removes only the order entry and stays re-addable.
	status, _ = sendJSON(t, client, http.MethodDelete, "/api/modules/skills", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, orderOf(), "skills")

	// Unknown ids are an error.
	status, _ = sendJSON(t, client, http.MethodDelete, "/api/modules/ghost", nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Reorder replaces wholesale without validating ids.
	status, _ = postJSON(t, client, "/api/modules/order", map[string]any{
		"order": []any{"projects", "hero", "not-a-known-module"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"projects", "hero", "not-a-known-module"}, orderOf())
}

func TestIndexRecordsVisit(t *testing.T) {
	before, err := store.LoadStats()
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, testServer.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "test-agent")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	after, err := store.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, before.Visits+1, after.Visits)
	require.NotEmpty(t, after.VisitorLogs)
	last := after.VisitorLogs[len(after.VisitorLogs)-1]
	assert.Equal(t, "203.0.113.9", last.IP)
	assert.Equal(t, "test-agent", last.UserAgent)
	require.NotNil(t, after.LastVisit)
}

func TestStatsRequiresAdmin(t *testing.T) {
	resp, err := http.Get(testServer.URL + "/api/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var stats Stats
	status := getJSON(t, adminClient(t), "/api/stats", &stats)
	assert.Equal(t, http.StatusOK, status)
}

func TestVisitorLogBounded(t *testing.T) {
	require.NoError(t, store.UpdateStats(func(stats *Stats) error {
		stats.VisitorLogs = make([]VisitorLog, constants.MAX_VISITOR_LOGS)
		for i := range stats.VisitorLogs {
			stats.VisitorLogs[i] = VisitorLog{IP: fmt.Sprintf("10.0.0.%d", i)}
		}
		return nil
	}))

	resp, err := http.Get(testServer.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	stats, err := store.LoadStats()
	require.NoError(t, err)
	assert.Len(t, stats.VisitorLogs, constants.MAX_VISITOR_LOGS)
	// Oldest entry evicted, newest kept.
	assert.NotEqual(t, "10.0.0.0", stats.VisitorLogs[0].IP)
}
