package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"streamgate/internal/history"
	"streamgate/internal/service"
)

// defaultAudioBitrate is used when the client does not ask for one.
const defaultAudioBitrate = 128

// StreamService is the operation surface the media handler needs.
// *service.StreamService implements it.
type StreamService interface {
	Info(ctx context.Context, req service.MediaRequest) (*service.InfoResult, error)
	Raw(ctx context.Context, req service.MediaRequest, headers map[string]string) (*service.MediaStream, error)
	Audio(ctx context.Context, req service.MediaRequest, bitrateKbps int, from, to string) (*service.MediaStream, error)
	Convert(ctx context.Context, req service.MediaRequest, ext string, bitrateKbps int) (*service.MediaStream, error)
	Remux(ctx context.Context, req service.MediaRequest) (*service.MediaStream, error)
	Extractors(ctx context.Context) ([]string, error)
	History(ctx context.Context, limit int) ([]history.Entry, error)
}

// MediaHandler handles stream and metadata HTTP requests.
type MediaHandler struct {
	svc    StreamService
	logger *slog.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(svc StreamService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		svc:    svc,
		logger: logger,
	}
}

// mediaRequest pulls the shared url/format/password triple out of the
// query string.
func mediaRequest(r *http.Request) (service.MediaRequest, bool) {
	q := r.URL.Query()
	req := service.MediaRequest{
		PageURL:  q.Get("url"),
		Format:   q.Get("format"),
		Password: q.Get("password"),
	}
	return req, req.PageURL != ""
}

// Info handles GET /api/v1/info
func (h *MediaHandler) Info(w http.ResponseWriter, r *http.Request) {
	req, ok := mediaRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	info, err := h.svc.Info(r.Context(), req)
	if err != nil {
		h.logger.Warn("info failed", "url", req.PageURL, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Stream handles GET /api/v1/stream - raw HTTP passthrough.
func (h *MediaHandler) Stream(w http.ResponseWriter, r *http.Request) {
	req, ok := mediaRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	// Range requests pass straight through to the media host.
	overrides := map[string]string{}
	if rng := r.Header.Get("Range"); rng != "" {
		overrides["Range"] = rng
	}

	stream, err := h.svc.Raw(r.Context(), req, overrides)
	if err != nil {
		h.logger.Warn("stream failed", "url", req.PageURL, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	defer stream.Body.Close()

	h.serveStream(w, stream)
}

// Audio handles GET /api/v1/audio - mp3 extraction.
func (h *MediaHandler) Audio(w http.ResponseWriter, r *http.Request) {
	req, ok := mediaRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	q := r.URL.Query()
	bitrate, ok := service.ParseBitrate(q.Get("bitrate"), defaultAudioBitrate)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid bitrate")
		return
	}

	stream, err := h.svc.Audio(r.Context(), req, bitrate, q.Get("from"), q.Get("to"))
	if err != nil {
		h.logger.Warn("audio failed", "url", req.PageURL, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	defer stream.Body.Close()

	h.serveStream(w, stream)
}

// Convert handles GET /api/v1/convert - generic transcode.
func (h *MediaHandler) Convert(w http.ResponseWriter, r *http.Request) {
	req, ok := mediaRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	q := r.URL.Query()
	ext := q.Get("ext")
	if ext == "" {
		writeError(w, http.StatusBadRequest, "missing ext parameter")
		return
	}
	bitrate, ok := service.ParseBitrate(q.Get("bitrate"), defaultAudioBitrate)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid bitrate")
		return
	}

	stream, err := h.svc.Convert(r.Context(), req, ext, bitrate)
	if err != nil {
		h.logger.Warn("convert failed", "url", req.PageURL, "ext", ext, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	defer stream.Body.Close()

	h.serveStream(w, stream)
}

// Remux handles GET /api/v1/remux - repackage without re-encoding.
func (h *MediaHandler) Remux(w http.ResponseWriter, r *http.Request) {
	req, ok := mediaRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	stream, err := h.svc.Remux(r.Context(), req)
	if err != nil {
		h.logger.Warn("remux failed", "url", req.PageURL, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	defer stream.Body.Close()

	h.serveStream(w, stream)
}

// Extractors handles GET /api/v1/extractors
func (h *MediaHandler) Extractors(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Extractors(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"extractors": names})
}

// History handles GET /api/v1/history
func (h *MediaHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string][]history.Entry{"requests": entries})
}

// serveStream writes an open media stream to the client. Headers are
// sent first, then bytes are copied live with a flush per chunk so
// players start playing before the stream ends.
func (h *MediaHandler) serveStream(w http.ResponseWriter, stream *service.MediaStream) {
	w.Header().Set("Content-Type", contentTypeFor(stream.Filename))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stream.Filename))

	n, err := copyFlush(w, stream.Body)
	if err != nil {
		// Headers are gone; all we can do is log and drop the connection.
		h.logger.Warn("stream interrupted",
			"filename", stream.Filename,
			"bytes_sent", n,
			"error", err,
		)
		return
	}

	h.logger.Info("stream completed", "filename", stream.Filename, "bytes_sent", n)
}

// copyFlush copies src to w, flushing after every chunk. It goes
// through http.ResponseController so flushing still works when w is
// wrapped by middleware.
func copyFlush(w http.ResponseWriter, src io.Reader) (int64, error) {
	rc := http.NewResponseController(w)
	canFlush := true

	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := w.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, writeErr
			}
			if canFlush {
				if err := rc.Flush(); err != nil {
					if !errors.Is(err, http.ErrNotSupported) {
						return written, err
					}
					canFlush = false
				}
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// contentTypeFor picks a media type from the filename extension.
func contentTypeFor(filename string) string {
	types := map[string]string{
		".mp3":  "audio/mpeg",
		".ogg":  "audio/ogg",
		".opus": "audio/opus",
		".m4a":  "audio/mp4",
		".mp4":  "video/mp4",
		".webm": "video/webm",
		".mkv":  "video/x-matroska",
		".avi":  "video/x-msvideo",
		".flv":  "video/x-flv",
		".ts":   "video/mp2t",
	}
	for ext, ct := range types {
		if strings.HasSuffix(filename, ext) {
			return ct
		}
	}
	return "application/octet-stream"
}
