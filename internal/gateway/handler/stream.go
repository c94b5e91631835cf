package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"dossierflow/internal/step"
)

// HandleIngestStream starts an ingest run and streams its progress as
// Server-Sent Events until the terminal event.
func (h *Handler) HandleIngestStream(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	runID, err := h.coord.Begin(step.StageIngest, force)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	eventCh, unsubscribe, ok := h.coord.Broker().Subscribe(runID)
	if !ok {
		writeError(w, http.StatusInternalServerError, "run stream not registered")
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Announce the run ID first so a watcher can attach on /api/watch.
	fmt.Fprintf(w, "event: run\ndata: {\"run_id\": %q}\n\n", runID)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				fmt.Fprintf(w, "event: close\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(map[string]any{
				"type":     event.Type.String(),
				"message":  event.Message,
				"progress": event.Progress,
			})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
			if event.Terminal() {
				return
			}
		}
	}
}

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type watchWSOutbound struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	Progress int32  `json:"progress,omitempty"`
	Closed   bool   `json:"closed,omitempty"`
}

// HandleWatchWS mirrors a run's event stream over a websocket.
func (h *Handler) HandleWatchWS(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(r.URL.Query().Get("run_id"))
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}
	eventCh, unsubscribe, ok := h.coord.Broker().Subscribe(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	defer unsubscribe()

	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		log.Printf("watch ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	// Reader only services control frames.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(watchWSPingEvery)
	defer pingTicker.Stop()

	writeEvent := func(out watchWSOutbound) error {
		if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
			return err
		}
		return conn.WriteJSON(out)
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-eventCh:
			if !ok {
				_ = writeEvent(watchWSOutbound{Type: "close", Closed: true})
				return
			}
			if err := writeEvent(watchWSOutbound{
				Type:     event.Type.String(),
				Message:  event.Message,
				Progress: event.Progress,
			}); err != nil {
				return
			}
			if event.Terminal() {
				return
			}
		}
	}
}
