package handler

import (
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"dossierflow/internal/artifactstore"
)

// HandleArtifacts lists the archived artifacts of the dossier.
func (h *Handler) HandleArtifacts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	names, err := h.artifacts.List(r.Context(), h.outputPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": names})
}

// HandleArtifactDownload serves one archived artifact's content.
func (h *Handler) HandleArtifactDownload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	content, err := h.artifacts.Get(r.Context(), h.outputPath, name)
	if errors.Is(err, artifactstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case ".txt":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		return
	}
}

// HandleArtifactURL returns a download link for one artifact. Stores
// that can presign hand out their own link; otherwise the gateway's
// download route serves the bytes directly.
func (h *Handler) HandleArtifactURL(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := h.artifacts.Get(r.Context(), h.outputPath, name); err != nil {
		if errors.Is(err, artifactstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "artifact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if presigner, ok := h.artifacts.(artifactstore.URLProvider); ok {
		link, err := presigner.GetURL(r.Context(), h.outputPath, name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": link})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url": "/api/artifacts/download?name=" + url.QueryEscape(name),
	})
}
