package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/plscore/leadscore-api/internal/pkg/httputil"
	"github.com/plscore/leadscore-api/internal/pkg/logger"
)

const keepAliveInterval = 15 * time.Second

// UploadCSV accepts a delimited-text lead file and kicks off asynchronous
// processing. The response returns immediately with the session ID; clients
// follow progress on the upload-status stream.
func (h *Handlers) UploadCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.Error(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %dMB limit", h.maxUploadBytes>>20))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	limit := 0
	if v := r.FormValue("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
	}

	sessionID := h.registry.Create()
	logger.Info("upload accepted", "session_id", sessionID,
		"filename", header.Filename, "bytes", len(raw), "limit", limit)

	// The request context dies with this response; the import carries on
	// under its own context.
	go h.importer.Run(context.Background(), sessionID, raw, limit)

	httputil.Created(w, "upload accepted", map[string]string{"session_id": sessionID})
}

// UploadStatus streams session progress as server-sent events. Unknown
// sessions get a 404 before any stream bytes are written.
func (h *Handlers) UploadStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sub, snapshot, ok := h.registry.Attach(sessionID)
	if !ok {
		httputil.NotFound(w, "upload session not found")
		return
	}
	defer h.registry.Detach(sessionID, sub)

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent := func(s interface{}) {
		data, _ := json.Marshal(s)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	// Late subscribers immediately see where the session stands.
	writeEvent(snapshot)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case snap, open := <-sub.C():
			if !open {
				// Session purged after its grace period.
				return
			}
			writeEvent(snap)
		}
	}
}
