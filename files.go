package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portfolio/constants"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

func uuidHex() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// saveUpload copies one multipart file into dst, creating parent
// directories as needed, and returns the byte count written.
func saveUpload(header *multipart.FileHeader, dst string) (int64, error) {
	src, err := header.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	return io.Copy(out, src)
}

// singleUpload parses the request and returns the one file under field,
// enforcing the configured body limit.
func singleUpload(w http.ResponseWriter, r *http.Request, field string) (*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, viper.GetInt64("upload.max_bytes"))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, ErrNoData
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 || headers[0].Filename == "" {
		return nil, ErrNoData
	}
	return headers[0], nil
}

// UploadImage handles POST /api/upload: a generic image upload for project
// cards and similar. The storage name is generated, never client-chosen.
func UploadImage(w http.ResponseWriter, r *http.Request) {
	header, err := singleUpload(w, r, "file")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No file provided")
		return
	}

	ext := fileExt(header.Filename)
	if !constants.ALLOWED_IMAGE_EXTENSIONS[ext] {
		respondMessage(w, http.StatusBadRequest, false, "Unsupported file type")
		return
	}

	name := uuidHex() + "." + ext
	if _, err := saveUpload(header, filepath.Join(viper.GetString("storage.upload_dir"), name)); err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Upload failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Upload successful",
		"url":     "/static/uploads/" + name,
	})
}

// UploadAvatar handles POST /api/upload-avatar. The avatar keeps a stable
// storage name per extension so re-uploading silently replaces the old
// image at the same path, and profile.avatar is pointed at it.
func UploadAvatar(w http.ResponseWriter, r *http.Request) {
	header, err := singleUpload(w, r, "avatar")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No file provided")
		return
	}

	ext := fileExt(header.Filename)
	if !constants.ALLOWED_IMAGE_EXTENSIONS[ext] {
		respondMessage(w, http.StatusBadRequest, false, "Only image formats are supported (PNG, JPG, GIF, WebP)")
		return
	}

	name := "avatar." + ext
	if _, err := saveUpload(header, filepath.Join(viper.GetString("storage.upload_dir"), name)); err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Upload failed: "+err.Error())
		return
	}

	avatarURL := "/static/uploads/" + name
	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		sectionMap(data, "profile")["avatar"] = avatarURL
		return data, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Upload failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Avatar uploaded",
		"avatar_url": avatarURL,
	})
}

// UploadBackground handles POST /api/upload-background. Each upload gets a
// fresh name; the previous background file stays on disk and the client
// applies the returned URL through a theme update.
func UploadBackground(w http.ResponseWriter, r *http.Request) {
	header, err := singleUpload(w, r, "file")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No file provided")
		return
	}

	ext := fileExt(header.Filename)
	if !constants.ALLOWED_IMAGE_EXTENSIONS[ext] {
		respondMessage(w, http.StatusBadRequest, false, "Only image formats are supported (PNG, JPG, GIF, WebP)")
		return
	}

	name := "background_" + uuidHex()[:8] + "." + ext
	if _, err := saveUpload(header, filepath.Join(viper.GetString("storage.upload_dir"), name)); err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Upload failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Background uploaded",
		"url":     "/static/uploads/" + name,
	})
}

// UploadCursor handles POST /api/upload-cursor. The theme is switched to
// the custom cursor in the same operation; the old cursor file is not
// cleaned up.
func UploadCursor(w http.ResponseWriter, r *http.Request) {
	header, err := singleUpload(w, r, "cursor")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No file provided")
		return
	}

	ext := fileExt(header.Filename)
	if !constants.ALLOWED_CURSOR_EXTENSIONS[ext] {
		respondMessage(w, http.StatusBadRequest, false, "Only .cur, .png, .svg, and .ico cursor files are supported")
		return
	}

	name := "cursor_" + uuidHex() + "." + ext
	if _, err := saveUpload(header, filepath.Join(viper.GetString("storage.upload_dir"), name)); err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Upload failed: "+err.Error())
		return
	}

	cursorURL := "/static/uploads/" + name
	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		theme := sectionMap(data, "theme")
		theme["cursor_style"] = "custom"
		theme["custom_cursor_url"] = cursorURL
		return data, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Upload failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Custom cursor uploaded",
		"cursor_url": cursorURL,
	})
}

// GetFiles handles GET /api/files: the full registry.
func GetFiles(w http.ResponseWriter, r *http.Request) {
	files, err := store.LoadFiles()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to load files: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, files)
}

// UploadFiles handles POST /api/files: one or more downloadable resources
// under the "files" multipart field, with optional description and folder.
// Files failing validation are reported individually; the batch succeeds
// if at least one file was stored and recorded.
func UploadFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, viper.GetInt64("upload.max_bytes"))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No file provided")
		return
	}

	headers := r.MultipartForm.File["files"]
	description := r.FormValue("description")
	folder := strings.TrimSpace(r.FormValue("folder"))

	anyNamed := false
	for _, header := range headers {
		if header.Filename != "" {
			anyNamed = true
			break
		}
	}
	if !anyNamed {
		respondMessage(w, http.StatusBadRequest, false, "No file selected")
		return
	}

	filesDir := viper.GetString("storage.files_dir")
	uploaded := []FileRecord{}
	uploadErrors := []string{}

	for _, header := range headers {
		if header.Filename == "" {
			continue
		}

		ext := fileExt(header.Filename)
		if !constants.ALLOWED_FILE_EXTENSIONS[ext] {
			uploadErrors = append(uploadErrors, header.Filename+": unsupported file type")
			continue
		}

		storageName := uuidHex() + "." + ext
		relativePath := storageName
		if folder != "" {
			relativePath = folder + "/" + storageName
		}

		size, err := saveUpload(header, filepath.Join(filesDir, filepath.FromSlash(relativePath)))
		if err != nil {
			uploadErrors = append(uploadErrors, header.Filename+": "+err.Error())
			continue
		}

		record := FileRecord{
			ID:           uuid.New().String(),
			OriginalName: header.Filename,
			Filename:     storageName,
			RelativePath: relativePath,
			Description:  description,
			Size:         size,
			UploadDate:   time.Now().Format(constants.TIMESTAMP_FORMAT),
			Type:         ext,
			Downloads:    0,
		}
		if folder != "" {
			record.Folder = &folder
		}

		err = store.UpdateFiles(func(files []FileRecord) ([]FileRecord, error) {
			return append(files, record), nil
		})
		if err != nil {
			uploadErrors = append(uploadErrors, header.Filename+": "+err.Error())
			continue
		}
		uploaded = append(uploaded, record)
	}

	if len(uploaded) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "File upload failed",
			"errors":  uploadErrors,
		})
		return
	}

	message := fmt.Sprintf("Uploaded %d file(s)", len(uploaded))
	if len(uploadErrors) > 0 {
		message += fmt.Sprintf(", %d failed", len(uploadErrors))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"files":   uploaded,
		"errors":  uploadErrors,
	})
}

// DeleteFile handles DELETE /api/files/{fileID}. The physical file goes
// first, then the record, inside one registry update; a missing physical
// file is tolerated so a crashed earlier delete can be retried.
func DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	filesDir := viper.GetString("storage.files_dir")

	err := store.UpdateFiles(func(files []FileRecord) ([]FileRecord, error) {
		index := -1
		for i := range files {
			if files[i].ID == fileID {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, ErrNotFound
		}

		path := filepath.Join(filesDir, filepath.FromSlash(files[index].RelativePath))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		return append(files[:index], files[index+1:]...), nil
	})
	if errors.Is(err, ErrNotFound) {
		respondMessage(w, http.StatusNotFound, false, "File not found")
		return
	}
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to delete file: "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, "File deleted")
}

// IncrementDownload handles POST /api/files/{fileID}/download. It touches
// only the counter and is safe to call repeatedly.
func IncrementDownload(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	err := store.UpdateFiles(func(files []FileRecord) ([]FileRecord, error) {
		for i := range files {
			if files[i].ID == fileID {
				files[i].Downloads++
				return files, nil
			}
		}
		return nil, ErrNotFound
	})
	if errors.Is(err, ErrNotFound) {
		respondMessage(w, http.StatusNotFound, false, "File not found")
		return
	}
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to record download: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// FilesStatus handles GET /api/files/status: a read-only drift check that
// reports records whose backing binary is missing without touching the
// registry.
func FilesStatus(w http.ResponseWriter, r *http.Request) {
	files, err := store.LoadFiles()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to load files: "+err.Error())
		return
	}

	filesDir := viper.GetString("storage.files_dir")
	missing := []MissingFile{}
	for _, record := range files {
		path := filepath.Join(filesDir, filepath.FromSlash(record.RelativePath))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			missing = append(missing, MissingFile{
				ID:       record.ID,
				Name:     record.OriginalName,
				Filename: record.Filename,
			})
		}
	}
	if len(missing) > 0 {
		color.Yellow("File registry drift: %d of %d records have no backing file", len(missing), len(files))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total":         len(files),
		"missing":       len(missing),
		"missing_files": missing,
	})
}

// DownloadFile handles GET /files/* and streams the stored file as an
// attachment. Folder paths are supported; traversal outside the files
// directory is not.
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	rel = strings.TrimPrefix(filepath.Clean("/"+rel), "/")
	if rel == "" || rel == "." {
		http.NotFound(w, r)
		return
	}

	full := filepath.Join(viper.GetString("storage.files_dir"), filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	log.Printf("Serving file download: %s", rel)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(rel)+`"`)
	http.ServeFile(w, r, full)
}
