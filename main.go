package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"portfolio/constants"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/spf13/viper"
)

var (
	store    *DocumentStore
	sessions *SessionStore
)

func main() {
	initConfig()

	var err error
	store, err = NewDocumentStore(viper.GetString("storage.data_dir"))
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}

	sessions, err = NewSessionStore(constants.MAX_SESSIONS, time.Duration(viper.GetInt("session.ttl_hours"))*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}

	for _, dir := range []string{viper.GetString("storage.upload_dir"), viper.GetString("storage.files_dir")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	r := initRouter()

	addr := fmt.Sprintf(":%d", viper.GetInt("server.port"))
	color.Green("Portfolio running on http://localhost%s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func initRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/", IndexPage)
	r.Get("/data.json", ServeDataJSON)
	r.Get("/files/*", DownloadFile)
	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(viper.GetString("storage.static_dir")))))

	r.Route("/api", func(r chi.Router) {
		// public reads
		r.Get("/data", GetData)
		r.Get("/projects", GetProjects)
		r.Get("/theme", GetTheme)
		r.Get("/layout", GetLayout)
		r.Get("/admin-theme", GetAdminTheme)
		r.Get("/modules", GetModules)
		r.Get("/files", GetFiles)
		r.Get("/files/status", FilesStatus)
		r.Post("/files/{fileID}/download", IncrementDownload)

		r.With(httprate.LimitByIP(viper.GetInt("limits.login_per_minute"), time.Minute)).Post("/login", Login)
		r.Post("/logout", Logout)

		// admin writes
		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware)

			r.Post("/data", UpdateData)
			r.Post("/profile", UpdateProfile)
			r.Post("/skills", UpdateSkills)
			r.Post("/password", ChangePassword)
			r.Get("/stats", GetStats)

			r.Post("/projects", AddProject)
			r.Put("/projects/{projectID}", UpdateProject)
			r.Delete("/projects/{projectID}", DeleteProject)

			r.Post("/upload", UploadImage)
			r.Post("/upload-avatar", UploadAvatar)
			r.Post("/upload-background", UploadBackground)
			r.Post("/upload-cursor", UploadCursor)

			r.Post("/files", UploadFiles)
			r.Delete("/files/{fileID}", DeleteFile)

			r.Post("/theme", UpdateTheme)
			r.Post("/layout", UpdateLayout)
			r.Post("/admin-theme", UpdateAdminTheme)

			r.Post("/modules", AddModule)
			r.Put("/modules/{moduleID}", UpdateModule)
			r.Delete("/modules/{moduleID}", DeleteModule)
			r.Post("/modules/order", UpdateModuleOrder)
		})
	})

	return r
}
