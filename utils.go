package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, success bool, message string) {
	respondJSON(w, status, map[string]any{
		"success": success,
		"message": message,
	})
}

// decodeBody reads the request body as a JSON object. An absent, empty, or
// malformed body is reported as ErrNoData so handlers can refuse it without
// touching storage.
func decodeBody(r *http.Request) (map[string]any, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil || len(raw) == 0 {
		return nil, ErrNoData
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, ErrNoData
	}
	if len(body) == 0 {
		return nil, ErrNoData
	}
	return body, nil
}

func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func boolField(m map[string]any, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

func anyField(m map[string]any, key string, fallback any) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return fallback
}

// clientIP prefers the first hop of X-Forwarded-For so visits behind a
// proxy log the real visitor address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.Index(forwarded, ","); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return strings.TrimSpace(forwarded)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}

// fileExt returns the lowercase extension of a client-supplied filename
// without the leading dot, or "" when there is none.
func fileExt(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
