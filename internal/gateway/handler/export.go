package handler

import (
	"errors"
	"log"
	"net/http"

	"dossierflow/internal/export"
	"dossierflow/internal/itinerary"
)

// HandleExportCombined merges the itinerary and booking documents into
// one printable HTML artifact.
func (h *Handler) HandleExportCombined(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var docs []string
	if html, err := h.itinerary.Latest(); err == nil {
		docs = append(docs, html)
	} else if !errors.Is(err, itinerary.ErrNotGenerated) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	hotels, flight, err := h.booking.Latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if flight != "" {
		docs = append(docs, flight)
	}
	docs = append(docs, hotels...)

	combined, err := export.Combine(docs...)
	if err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			writeError(w, http.StatusConflict, "nothing to export yet")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.artifacts.Put(r.Context(), h.outputPath, "combined_export.html", []byte(combined)); err != nil {
		log.Printf("archive combined export: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": combined})
}
