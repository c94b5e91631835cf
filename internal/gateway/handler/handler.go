// Package handler exposes the dossier pipeline, itinerary and booking
// flows over plain HTTP JSON endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"dossierflow/internal/artifactstore"
	"dossierflow/internal/booking"
	"dossierflow/internal/dossier"
	"dossierflow/internal/itinerary"
	"dossierflow/internal/run"
	"dossierflow/internal/step"
	"dossierflow/internal/trip"
)

// Handler carries the wired services behind the HTTP surface.
type Handler struct {
	coord      *run.Coordinator
	backend    *dossier.Backend
	booking    *booking.Service
	itinerary  *itinerary.Service
	contexts   *trip.ContextStore
	artifacts  artifactstore.Store
	inputDir   string
	outputPath string
}

func New(
	coord *run.Coordinator,
	backend *dossier.Backend,
	bookingSvc *booking.Service,
	itinerarySvc *itinerary.Service,
	contexts *trip.ContextStore,
	artifacts artifactstore.Store,
	inputDir, outputPath string,
) *Handler {
	return &Handler{
		coord:      coord,
		backend:    backend,
		booking:    bookingSvc,
		itinerary:  itinerarySvc,
		contexts:   contexts,
		artifacts:  artifacts,
		inputDir:   inputDir,
		outputPath: outputPath,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

// HandleFiles lists the input documents with their detected domains.
func (h *Handler) HandleFiles(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	files, err := h.backend.ListFiles(r.Context(), h.inputDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

type stepView struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Done       bool     `json:"done"`
	CanRun     bool     `json:"can_run"`
	Log        []string `json:"log"`
	LogVisible bool     `json:"log_visible"`
}

// HandleSteps returns the full per-stage pipeline state.
func (h *Handler) HandleSteps(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	h.coord.RefreshStatuses(r.Context())
	states := h.coord.Steps().All()
	views := make([]stepView, 0, len(states))
	for _, st := range states {
		views = append(views, stepView{
			Name:       st.Stage.String(),
			Label:      st.Stage.Label(),
			Done:       st.Done,
			CanRun:     h.coord.CanRun(st.Stage),
			Log:        st.Log,
			LogVisible: st.LogVisible,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"steps": views})
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	text, err := h.backend.Summary(r.Context(), h.outputPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": text})
}

func (h *Handler) HandleRiskReport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	text, err := h.backend.RiskReport(r.Context(), h.outputPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"risk_report": text})
}

// HandleWriterContext reads (GET) or saves (POST) the extra drafting
// instructions for the writer stage.
func (h *Handler) HandleWriterContext(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		text, err := h.backend.WriterContext(r.Context(), h.outputPath)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"writer_context": text})
	case http.MethodPost:
		var in struct {
			WriterContext string `json:"writer_context"`
		}
		if !decodeJSON(w, r, &in) {
			return
		}
		h.backend.SaveWriterContext(h.outputPath, in.WriterContext)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// HandleRunStep executes one stage synchronously and returns the views
// it produced.
func (h *Handler) HandleRunStep(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var in struct {
		Step          string `json:"step"`
		Force         bool   `json:"force"`
		WriterContext string `json:"writer_context"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	stage, err := step.Parse(in.Step)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.WriterContext) != "" {
		h.backend.SaveWriterContext(h.outputPath, in.WriterContext)
	}

	if err := h.coord.RunStage(r.Context(), stage, in.Force); err != nil {
		var missing *run.MissingPrerequisiteError
		switch {
		case errors.As(err, &missing):
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":   "missing_prerequisite",
				"missing": missing.Missing.String(),
			})
		case errors.Is(err, run.ErrStageBusy):
			writeError(w, http.StatusConflict, "step already running")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	out := map[string]any{"status": "ok", "step": stage.String()}
	if text, err := h.backend.Summary(r.Context(), h.outputPath); err == nil && text != "" {
		out["summary"] = text
	}
	if text, err := h.backend.RiskReport(r.Context(), h.outputPath); err == nil && text != "" {
		out["risk_report"] = text
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleRunAddFile ingests one more input document into the dossier and
// redrafts the summary profile and the letter around it.
func (h *Handler) HandleRunAddFile(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var in struct {
		File          string `json:"file"`
		WriterContext string `json:"writer_context"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.File) == "" {
		writeError(w, http.StatusBadRequest, "missing_file")
		return
	}
	res, err := h.backend.AddFile(r.Context(), dossier.AddFileRequest{
		InputDir:      h.inputDir,
		OutputPath:    h.outputPath,
		FileRef:       in.File,
		WriterContext: in.WriterContext,
	})
	if errors.Is(err, dossier.ErrFileNotFound) {
		writeError(w, http.StatusNotFound, "file_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.coord.RefreshStatuses(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "done",
		"added_file":      res.AddedFile,
		"summary_profile": res.Summary,
		"letter":          res.Letter,
		"output_path":     h.outputPath,
	})
}

// HandleRunAll forces every stage in order. A mid-sequence failure is
// reported but does not abort later stages.
func (h *Handler) HandleRunAll(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.coord.RunAll(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "partial", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
