package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"vidgrab/internal/backend"
	"vidgrab/internal/config"
	"vidgrab/internal/core"
	"vidgrab/internal/history"
	"vidgrab/internal/manager"
	"vidgrab/internal/utils"
)

type Handler struct {
	config     *config.Config
	controller *manager.Controller
}

func NewHandler(cfg *config.Config, controller *manager.Controller) *Handler {
	return &Handler{
		config:     cfg,
		controller: controller,
	}
}

// statusFor maps controller and backend errors onto HTTP status codes
func statusFor(err error) int {
	var failure *backend.Failure
	switch {
	case errors.Is(err, manager.ErrEmptyURL),
		errors.Is(err, manager.ErrNotAnalyzed),
		errors.Is(err, manager.ErrMissingFormat),
		errors.Is(err, manager.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, manager.ErrDownloadBusy),
		errors.Is(err, manager.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &failure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	utils.LogWarning("API", "%s: %v (HTTP %d)", op, err, status)
	http.Error(w, err.Error(), status)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.config)
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.controller.Snapshot())
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.controller.History()
	if err != nil {
		writeError(w, "GetHistory", err)
		return
	}
	writeJSON(w, entries)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var request core.MediaReference
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		utils.LogWarning("API", "Analyze: Invalid JSON: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	analysis, err := h.controller.Analyze(r.Context(), request.URL)
	if err != nil {
		writeError(w, "Analyze", err)
		return
	}
	writeJSON(w, analysis)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	kind, ok := core.ParseDownloadKind(mux.Vars(r)["kind"])
	if !ok {
		http.Error(w, "Unknown download kind", http.StatusBadRequest)
		return
	}

	var request struct {
		FormatID string `json:"format_id"`
	}
	// The body is optional for audio and asset downloads
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		utils.LogWarning("API", "Download: Invalid JSON: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := h.controller.Download(r.Context(), kind, request.FormatID)
	if err != nil {
		writeError(w, "Download", err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) Redownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	local, err := h.controller.Redownload(r.Context(), id)
	if err != nil {
		writeError(w, "Redownload", err)
		return
	}
	writeJSON(w, map[string]string{"id": id, "local_path": local})
}

// AnalyzeForm handles the page's URL form. Failures surface as notices on the page.
func (h *Handler) AnalyzeForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.controller.Analyze(r.Context(), r.FormValue("url")); err != nil {
		utils.LogDebug("API", "AnalyzeForm: %v", err)
	}
	redirectHome(w, r)
}

// DownloadForm starts a background download and returns to the page, which
// refreshes itself while the download is active.
func (h *Handler) DownloadForm(w http.ResponseWriter, r *http.Request) {
	kind, ok := core.ParseDownloadKind(mux.Vars(r)["kind"])
	if !ok {
		http.Error(w, "Unknown download kind", http.StatusBadRequest)
		return
	}

	if _, err := h.controller.StartDownload(kind, r.FormValue("format_id")); err != nil {
		utils.LogDebug("API", "DownloadForm: %v", err)
	}
	redirectHome(w, r)
}

func (h *Handler) RedownloadForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.controller.Redownload(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.LogDebug("API", "RedownloadForm: %v", err)
	}
	redirectHome(w, r)
}

func (h *Handler) ClearHistoryForm(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.ClearHistory(); err != nil {
		utils.LogError("API", "ClearHistory: %v", err)
		http.Error(w, "Failed to clear history", http.StatusInternalServerError)
		return
	}
	redirectHome(w, r)
}

// ServeFile streams a saved file from the download directory as an attachment
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.config.DownloadPath, name)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to open file", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil || fileInfo.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	encodedFilename := url.PathEscape(name)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", name, encodedFilename))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", fileInfo.Size()))

	io.Copy(w, file)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
