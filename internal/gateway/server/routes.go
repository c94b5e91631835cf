package server

import (
	"net/http"

	"dossierflow/internal/gateway/handler"
	"dossierflow/internal/gateway/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	// Dossier pipeline
	mux.HandleFunc("/api/files", h.HandleFiles)
	mux.HandleFunc("/api/steps", h.HandleSteps)
	mux.HandleFunc("/api/summary", h.HandleSummary)
	mux.HandleFunc("/api/risk_report", h.HandleRiskReport)
	mux.HandleFunc("/api/writer_context", h.HandleWriterContext)
	mux.HandleFunc("/api/ingest_stream", h.HandleIngestStream)
	mux.HandleFunc("/api/watch", h.HandleWatchWS)
	mux.HandleFunc("/api/run_step", h.HandleRunStep)
	mux.HandleFunc("/api/run_add_file", h.HandleRunAddFile)
	mux.HandleFunc("/api/run_all", h.HandleRunAll)

	// Itinerary
	mux.HandleFunc("/api/itinerary/run", h.HandleItineraryRun)
	mux.HandleFunc("/api/itinerary/latest", h.HandleItineraryLatest)
	mux.HandleFunc("/api/itinerary/context/save", h.HandleContextSave)
	mux.HandleFunc("/api/itinerary/context/latest", h.HandleContextLatest)

	// Booking
	mux.HandleFunc("/api/booking/generate", h.HandleBookingGenerate)
	mux.HandleFunc("/api/booking/ai_generate", h.HandleBookingAIGenerate)
	mux.HandleFunc("/api/booking/extract_trip", h.HandleBookingExtractTrip)
	mux.HandleFunc("/api/booking/trip/save", h.HandleTripSave)
	mux.HandleFunc("/api/booking/trip/latest", h.HandleTripLatest)
	mux.HandleFunc("/api/booking/destinations", h.HandleBookingDestinations)
	mux.HandleFunc("/api/booking/latest", h.HandleBookingLatest)

	// Export
	mux.HandleFunc("/api/export/combined", h.HandleExportCombined)

	mux.HandleFunc("/api/artifacts", h.HandleArtifacts)
	mux.HandleFunc("/api/artifacts/download", h.HandleArtifactDownload)
	mux.HandleFunc("/api/artifacts/url", h.HandleArtifactURL)

	return middleware.CORS(mux)
}
