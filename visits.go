package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"portfolio/constants"

	"github.com/spf13/viper"
)

// recordVisit bumps the visit counter, stamps the last visit, and appends
// to the bounded visitor log (newest kept, oldest evicted past the cap).
func recordVisit(r *http.Request) {
	err := store.UpdateStats(func(stats *Stats) error {
		now := time.Now().Format(constants.TIMESTAMP_FORMAT)
		stats.Visits++
		stats.LastVisit = &now

		userAgent := r.Header.Get("User-Agent")
		if userAgent == "" {
			userAgent = "Unknown"
		}
		stats.VisitorLogs = append(stats.VisitorLogs, VisitorLog{
			IP:        clientIP(r),
			Timestamp: now,
			UserAgent: userAgent,
		})
		if len(stats.VisitorLogs) > constants.MAX_VISITOR_LOGS {
			stats.VisitorLogs = stats.VisitorLogs[len(stats.VisitorLogs)-constants.MAX_VISITOR_LOGS:]
		}
		return nil
	})
	if err != nil {
		// A failed visit log must not take down the public page.
		log.Printf("Failed to record visit: %v", err)
	}
}

// IndexPage records the visit and serves the static landing page when one
// is deployed alongside the binary.
func IndexPage(w http.ResponseWriter, r *http.Request) {
	recordVisit(r)

	index := filepath.Join(viper.GetString("storage.static_dir"), "index.html")
	if _, err := os.Stat(index); err == nil {
		http.ServeFile(w, r, index)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("portfolio is running"))
}
