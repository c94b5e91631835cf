package handler

import (
	"net/http"
	"strings"
	"time"

	"dossierflow/internal/booking"
	"dossierflow/internal/trip"
)

func bookingView(res booking.Result) map[string]any {
	return map[string]any{
		"used_cache":  res.UsedCache,
		"trip_info":   res.TripInfo,
		"data":        res.Data,
		"hotel_htmls": res.HotelHTMLs,
		"flight_html": res.FlightHTML,
	}
}

// HandleBookingGenerate fills booking documents from the built-in
// catalog without a model call.
func (h *Handler) HandleBookingGenerate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var in struct {
		Destination   string `json:"destination"`
		NumNights     int    `json:"num_nights"`
		GuestName     string `json:"guest_name"`
		OriginAirport string `json:"origin_airport"`
		StartDate     string `json:"start_date"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	// Absent start date means a trip three months out.
	start := time.Now().AddDate(0, 0, 90)
	if strings.TrimSpace(in.StartDate) != "" {
		parsed, err := time.Parse("2006-01-02", in.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		start = parsed
	}
	res, err := h.booking.Generate(in.Destination, in.NumNights, in.GuestName, in.OriginAirport, start)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bookingView(res))
}

// HandleBookingAIGenerate runs the model-assisted flow, reusing the
// cached selection unless force_new is set or a trip override is sent.
func (h *Handler) HandleBookingAIGenerate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var in struct {
		ForceNew bool       `json:"force_new"`
		TripInfo *trip.Info `json:"trip_info"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.booking.GenerateAI(r.Context(), h.inputDir, in.ForceNew, in.TripInfo)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bookingView(res))
}

// HandleBookingExtractTrip re-reads the trip-information files and
// returns the extracted record without generating bookings.
func (h *Handler) HandleBookingExtractTrip(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	info, err := h.booking.ExtractTrip(r.Context(), h.inputDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trip_info": info})
}

func (h *Handler) HandleTripSave(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var in struct {
		TripInfo trip.Info `json:"trip_info"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.booking.SaveTripInfo(in.TripInfo); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleTripLatest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	info, err := h.booking.LatestTripInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trip_info": info})
}

func (h *Handler) HandleBookingDestinations(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"destinations": booking.Destinations()})
}

// HandleBookingLatest returns the most recently rendered documents.
func (h *Handler) HandleBookingLatest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	hotels, flight, err := h.booking.Latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hotel_htmls": hotels,
		"flight_html": flight,
	})
}
