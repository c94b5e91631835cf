package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dossierflow/internal/artifactstore"
	"dossierflow/internal/booking"
	"dossierflow/internal/dossier"
	"dossierflow/internal/dossier/statestore"
	"dossierflow/internal/gateway/handler"
	"dossierflow/internal/gateway/server"
	"dossierflow/internal/itinerary"
	"dossierflow/internal/llm"
	"dossierflow/internal/run"
	"dossierflow/internal/step"
	"dossierflow/internal/trip"
)

type fixture struct {
	mux      http.Handler
	fake     *llm.FakeClient
	coord    *run.Coordinator
	inputDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	inputDir := filepath.Join(dir, "input")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	outputPath := filepath.Join(dir, "out", "letter.html")
	cacheDir := dossier.CacheDir(outputPath)

	fake := llm.NewFakeClient()
	store := statestore.New(filepath.Join(dir, "state.json"))
	artifacts := artifactstore.NewMemoryStore()
	backend := dossier.NewBackend(fake, store, artifacts)
	coord := run.NewCoordinator(backend, step.NewStore(), run.NewBroker(), run.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
	})
	contexts := trip.NewContextStore(cacheDir)
	bookingSvc := booking.NewService(fake, booking.ReadTextFile, booking.NewGenerator(7), cacheDir, filepath.Dir(outputPath))
	itinerarySvc := itinerary.NewService(fake, contexts, cacheDir)

	h := handler.New(coord, backend, bookingSvc, itinerarySvc, contexts, artifacts, inputDir, outputPath)
	return &fixture{
		mux:      server.NewMux(h),
		fake:     fake,
		coord:    coord,
		inputDir: inputDir,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (f *fixture) writeInput(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.inputDir, name), []byte(content), 0o644))
}

func TestHandleFiles_ListsDetectedDomains(t *testing.T) {
	f := newFixture(t)
	f.writeInput(t, "TAI CHINH - bank.txt", "statement")

	rec := f.do(t, http.MethodGet, "/api/files", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	files := body["files"].([]any)
	require.Len(t, files, 1)
	require.Equal(t, "financial", files[0].(map[string]any)["domain"])
}

func TestHandleSteps_InitialState(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/steps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	steps := decodeBody(t, rec)["steps"].([]any)
	require.Len(t, steps, 5)

	first := steps[0].(map[string]any)
	require.Equal(t, "ingest", first["name"])
	require.True(t, first["can_run"].(bool))
	require.False(t, first["done"].(bool))

	last := steps[4].(map[string]any)
	require.Equal(t, "writer", last["name"])
	require.False(t, last["can_run"].(bool))
}

func TestHandleRunStep_MissingPrerequisiteConflict(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/run_step", map[string]any{"step": "summary"})
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "missing_prerequisite", body["error"])
	require.Equal(t, "ingest", body["missing"])
}

func TestHandleRunStep_UnknownStage(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/run_step", map[string]any{"step": "polish"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIngestStream_StreamsProgressAndDone(t *testing.T) {
	f := newFixture(t)
	f.writeInput(t, "HO SO CA NHAN - passport.txt", "passport text")

	rec := f.do(t, http.MethodGet, "/api/ingest_stream", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.Contains(t, body, `"run_id"`)
	require.Contains(t, body, "Extracting: HO SO CA NHAN - passport.txt")
	require.Contains(t, body, `"type":"done"`)
}

func TestPipeline_EndToEndOverHTTP(t *testing.T) {
	f := newFixture(t)
	f.fake.Responses = map[string]string{
		"visa consultant":    "PROFILE TEXT",
		"risk analyst":       "RISK POINTS",
		"explanation letter": "<p>Dear Officer</p>",
	}
	f.writeInput(t, "HO SO CA NHAN - passport.txt", "passport text")

	rec := f.do(t, http.MethodGet, "/api/ingest_stream", nil)
	require.Contains(t, rec.Body.String(), `"type":"done"`)

	for _, name := range []string{"extract", "summary", "risk", "writer"} {
		rec := f.do(t, http.MethodPost, "/api/run_step", map[string]any{"step": name})
		require.Equal(t, http.StatusOK, rec.Code, "step %s: %s", name, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/summary", nil)
	require.Equal(t, "PROFILE TEXT", decodeBody(t, rec)["summary"])

	rec = f.do(t, http.MethodGet, "/api/risk_report", nil)
	require.Equal(t, "RISK POINTS", decodeBody(t, rec)["risk_report"])

	rec = f.do(t, http.MethodGet, "/api/steps", nil)
	for _, sv := range decodeBody(t, rec)["steps"].([]any) {
		require.True(t, sv.(map[string]any)["done"].(bool))
	}
}

func TestHandleWriterContext_SaveThenRead(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/writer_context", map[string]any{"writer_context": "mention the sponsor"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/writer_context", nil)
	require.Equal(t, "mention the sponsor", decodeBody(t, rec)["writer_context"])
}

func TestHandleContextSaveAndLatest(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/itinerary/context/save", map[string]any{
		"participants":      "NGUYEN VAN A",
		"travel_purpose":    "tourism",
		"travel_start_date": "2026-07-01",
		"travel_end_date":   "2026-07-11",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody(t, rec)["itinerary_summary"].(string)
	require.True(t, strings.HasPrefix(summary, "Core itinerary inputs:"))

	rec = f.do(t, http.MethodGet, "/api/itinerary/context/latest", nil)
	body := decodeBody(t, rec)
	require.Equal(t, summary, body["itinerary_summary"])
	require.Equal(t, "tourism", body["form_data"].(map[string]any)["travel_purpose"])
}

func TestHandleContextSave_EmptyFormRejected(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/itinerary/context/save", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleItineraryRun_RequiresContext(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/itinerary/run", map[string]any{})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleBookingGenerate_CatalogFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/booking/generate", map[string]any{
		"destination":    "Australia",
		"num_nights":     7,
		"guest_name":     "NGUYEN VAN A",
		"origin_airport": "HAN",
		"start_date":     "2026-07-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.NotEmpty(t, body["flight_html"])
	require.NotEmpty(t, body["hotel_htmls"])

	rec = f.do(t, http.MethodGet, "/api/booking/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decodeBody(t, rec)["flight_html"])
}

func TestHandleBookingGenerate_BadDate(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/booking/generate", map[string]any{
		"destination": "Australia",
		"start_date":  "July 1st",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBookingDestinations(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/booking/destinations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dests := decodeBody(t, rec)["destinations"].([]any)
	require.Contains(t, dests, "Australia")
}

func TestHandleExportCombined(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/export/combined", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/booking/generate", map[string]any{
		"destination":    "Australia",
		"num_nights":     5,
		"guest_name":     "NGUYEN VAN A",
		"origin_airport": "HAN",
		"start_date":     "2026-07-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/export/combined", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	html := decodeBody(t, rec)["html"].(string)
	require.Contains(t, html, "page-break-after")
}

func TestCORSHeadersApplied(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/files", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func runPipelineOverHTTP(t *testing.T, f *fixture) {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/api/ingest_stream", nil)
	require.Contains(t, rec.Body.String(), `"type":"done"`)
	for _, name := range []string{"extract", "summary", "risk", "writer"} {
		rec := f.do(t, http.MethodPost, "/api/run_step", map[string]any{"step": name})
		require.Equal(t, http.StatusOK, rec.Code, "step %s: %s", name, rec.Body.String())
	}
}

func TestHandleRunAddFile_RedraftsSummaryAndLetter(t *testing.T) {
	f := newFixture(t)
	f.fake.Responses = map[string]string{
		"visa consultant":    "PROFILE TEXT",
		"risk analyst":       "RISK POINTS",
		"explanation letter": "<p>Dear Officer</p>",
	}
	f.writeInput(t, "HO SO CA NHAN - passport.txt", "passport text")
	runPipelineOverHTTP(t, f)

	f.fake.Responses["visa consultant"] = "PROFILE WITH SPONSOR"
	f.fake.Responses["explanation letter"] = "<p>Sponsored letter</p>"
	f.writeInput(t, "TAI CHINH - sponsor.txt", "sponsor bank letter")

	rec := f.do(t, http.MethodPost, "/api/run_add_file", map[string]any{
		"file": "TAI CHINH - sponsor.txt",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	require.Equal(t, "done", body["status"])
	require.Equal(t, "TAI CHINH - sponsor.txt", body["added_file"])
	require.Equal(t, "PROFILE WITH SPONSOR", body["summary_profile"])
	require.Equal(t, "<p>Sponsored letter</p>", body["letter"])

	rec = f.do(t, http.MethodGet, "/api/summary", nil)
	require.Equal(t, "PROFILE WITH SPONSOR", decodeBody(t, rec)["summary"])
}

func TestHandleRunAddFile_MissingAndUnknownReference(t *testing.T) {
	f := newFixture(t)
	f.writeInput(t, "HO SO CA NHAN - passport.txt", "passport text")

	rec := f.do(t, http.MethodPost, "/api/run_add_file", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "missing_file", decodeBody(t, rec)["error"])

	rec = f.do(t, http.MethodPost, "/api/run_add_file", map[string]any{"file": "no-such.txt"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "file_not_found", decodeBody(t, rec)["error"])
}

func TestHandleBookingGenerate_DefaultsStartDate(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/booking/generate", map[string]any{
		"destination":    "Australia",
		"num_nights":     4,
		"guest_name":     "NGUYEN VAN A",
		"origin_airport": "HAN",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, decodeBody(t, rec)["flight_html"])
}

func TestArtifactRoutes_ListURLAndDownload(t *testing.T) {
	f := newFixture(t)
	f.fake.Responses = map[string]string{
		"visa consultant":    "PROFILE TEXT",
		"risk analyst":       "RISK POINTS",
		"explanation letter": "<p>Dear Officer</p>",
	}
	f.writeInput(t, "HO SO CA NHAN - passport.txt", "passport text")

	rec := f.do(t, http.MethodGet, "/api/artifacts/url", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/artifacts/url?name=letter.html", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	runPipelineOverHTTP(t, f)

	rec = f.do(t, http.MethodGet, "/api/artifacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, decodeBody(t, rec)["artifacts"].([]any), "letter.html")

	rec = f.do(t, http.MethodGet, "/api/artifacts/url?name=letter.html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	link := decodeBody(t, rec)["url"].(string)
	require.Equal(t, "/api/artifacts/download?name=letter.html", link)

	rec = f.do(t, http.MethodGet, link, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "<p>Dear Officer</p>", rec.Body.String())
}

func TestIngestStream_WatchersReplayTheFullRun(t *testing.T) {
	f := newFixture(t)
	f.writeInput(t, "HO SO CA NHAN - passport.txt", "passport text")

	rec := f.do(t, http.MethodGet, "/api/ingest_stream", nil)
	require.Contains(t, rec.Body.String(), `"type":"done"`)

	match := regexp.MustCompile(`"run_id": "([^"]+)"`).FindStringSubmatch(rec.Body.String())
	require.NotNil(t, match, "run announcement missing: %s", rec.Body.String())

	// A watcher attaching after the SSE consumer finished still sees
	// every event of the run, not the leftovers.
	ch, cancel, ok := f.coord.Broker().Subscribe(match[1])
	require.True(t, ok)
	defer cancel()

	var events []run.Event
	timeout := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case ev, more := <-ch:
			if !more {
				open = false
				break
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("watch stream never closed, got %+v", events)
		}
	}
	require.NotEmpty(t, events)
	var messages []string
	for _, ev := range events {
		messages = append(messages, ev.Message)
	}
	require.Contains(t, messages, "Extracting: HO SO CA NHAN - passport.txt")
	require.True(t, events[len(events)-1].Terminal())
}
