package handler

import (
	"errors"
	"net/http"

	"dossierflow/internal/itinerary"
	"dossierflow/internal/trip"
)

func (h *Handler) HandleItineraryRun(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var in struct {
		ExtraContext string `json:"extra_context"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	runIn := itinerary.RunInput{Extra: in.ExtraContext}
	if summary, err := h.backend.Summary(r.Context(), h.outputPath); err == nil {
		runIn.SummaryProfile = summary
	}
	if hotels, flight, err := h.booking.Latest(); err == nil {
		runIn.HotelHTMLs = hotels
		runIn.FlightHTML = flight
	}
	html, err := h.itinerary.Run(r.Context(), runIn)
	if err != nil {
		if errors.Is(err, itinerary.ErrNoContext) {
			writeError(w, http.StatusConflict, "save the itinerary context first")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"itinerary_html": html})
}

func (h *Handler) HandleItineraryLatest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	html, err := h.itinerary.Latest()
	if err != nil {
		if errors.Is(err, itinerary.ErrNotGenerated) {
			writeError(w, http.StatusNotFound, "no itinerary generated yet")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"itinerary_html": html})
}

// HandleContextSave recomputes the canonical context text server-side
// and returns it.
func (h *Handler) HandleContextSave(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var form trip.ContextForm
	if !decodeJSON(w, r, &form) {
		return
	}
	text, err := h.contexts.Save(form)
	if err != nil {
		if errors.Is(err, trip.ErrMissingContext) {
			writeError(w, http.StatusBadRequest, "at least one field is required")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"itinerary_summary": text})
}

func (h *Handler) HandleContextLatest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	text, form, err := h.contexts.Latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"itinerary_summary": text,
		"form_data":         form,
	})
}
