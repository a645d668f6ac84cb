// Package service orchestrates stream requests: it drives the engine
// for each operation, derives download filenames and records every
// request in the history store.
package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"streamgate/internal/engine"
	"streamgate/internal/history"
)

// MediaRequest identifies one video page and how to resolve it.
type MediaRequest struct {
	PageURL  string
	Format   string
	Password string
}

// InfoResult is the resolved metadata summary for a page.
type InfoResult struct {
	Title     string      `json:"title"`
	Extractor string      `json:"extractor"`
	Ext       string      `json:"ext"`
	Protocol  string      `json:"protocol"`
	Playlist  bool        `json:"playlist"`
	URLs      []string    `json:"urls,omitempty"`
	Filename  string      `json:"filename,omitempty"`
	Entries   []InfoEntry `json:"entries,omitempty"`
}

// InfoEntry is one element of an enumerated playlist.
type InfoEntry struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// MediaStream is an open byte stream plus the filename a client should
// save it under.
type MediaStream struct {
	Body     io.ReadCloser
	Filename string
}

// StreamService exposes the engine's operations to the API layer.
type StreamService struct {
	eng    *engine.Engine
	hist   *history.Store // nil when history is disabled
	logger *slog.Logger
}

// NewStreamService creates a stream service. hist may be nil.
func NewStreamService(eng *engine.Engine, hist *history.Store, logger *slog.Logger) *StreamService {
	return &StreamService{
		eng:    eng,
		hist:   hist,
		logger: logger,
	}
}

// Info resolves a page without opening any stream.
func (s *StreamService) Info(ctx context.Context, req MediaRequest) (*InfoResult, error) {
	v := s.eng.NewVideo(req.PageURL, req.Format, req.Password)

	doc, err := v.Metadata(ctx)
	if err != nil {
		s.record(ctx, req, history.OpInfo, "", err)
		return nil, err
	}

	result := &InfoResult{
		Title:     doc.Title(),
		Extractor: doc.Extractor(),
		Ext:       doc.Ext(),
		Protocol:  doc.Protocol(),
		Playlist:  doc.IsPlaylist(),
	}
	if doc.IsPlaylist() {
		// Playlists are only ever enumerated, never streamed whole.
		for _, entry := range doc.Entries() {
			result.Entries = append(result.Entries, InfoEntry{
				Title: entry.Title(),
				URL:   entry.RawURL(),
			})
		}
	} else {
		if urls, err := v.URLs(ctx); err == nil {
			result.URLs = urls
		}
		if name, err := v.Filename(ctx); err == nil {
			result.Filename = name
		}
	}

	s.record(ctx, req, history.OpInfo, "", nil)
	return result, nil
}

// Raw opens the media URL as a direct HTTP passthrough.
func (s *StreamService) Raw(ctx context.Context, req MediaRequest, headers map[string]string) (*MediaStream, error) {
	v := s.eng.NewVideo(req.PageURL, req.Format, req.Password)

	h, err := s.eng.RawStream(ctx, v, headers)
	if err != nil {
		s.record(ctx, req, history.OpStream, "", err)
		return nil, err
	}

	name, err := v.Filename(ctx)
	if err != nil {
		h.Close()
		s.record(ctx, req, history.OpStream, "", err)
		return nil, err
	}

	s.record(ctx, req, history.OpStream, "", nil)
	return &MediaStream{Body: h, Filename: name}, nil
}

// Audio opens an mp3 extraction of the media.
func (s *StreamService) Audio(ctx context.Context, req MediaRequest, bitrateKbps int, from, to string) (*MediaStream, error) {
	v := s.eng.NewVideo(req.PageURL, req.Format, req.Password)

	h, err := s.eng.AudioStream(ctx, v, bitrateKbps, from, to)
	if err != nil {
		s.record(ctx, req, history.OpAudio, "mp3", err)
		return nil, err
	}

	name, err := v.FilenameWithExtension(ctx, "mp3")
	if err != nil {
		h.Close()
		s.record(ctx, req, history.OpAudio, "mp3", err)
		return nil, err
	}

	s.record(ctx, req, history.OpAudio, "mp3", nil)
	return &MediaStream{Body: h, Filename: name}, nil
}

// Convert opens a generic transcode into the requested container.
func (s *StreamService) Convert(ctx context.Context, req MediaRequest, ext string, bitrateKbps int) (*MediaStream, error) {
	v := s.eng.NewVideo(req.PageURL, req.Format, req.Password)

	h, err := s.eng.ConvertedStream(ctx, v, engine.ConvertOptions{
		Ext:         ext,
		BitrateKbps: bitrateKbps,
	})
	if err != nil {
		s.record(ctx, req, history.OpConvert, ext, err)
		return nil, err
	}

	name, err := v.FilenameWithExtension(ctx, ext)
	if err != nil {
		h.Close()
		s.record(ctx, req, history.OpConvert, ext, err)
		return nil, err
	}

	s.record(ctx, req, history.OpConvert, ext, nil)
	return &MediaStream{Body: h, Filename: name}, nil
}

// Remux opens a repackaging stream. Two-source media comes out as
// Matroska, so the filename extension follows the stream topology.
func (s *StreamService) Remux(ctx context.Context, req MediaRequest) (*MediaStream, error) {
	v := s.eng.NewVideo(req.PageURL, req.Format, req.Password)

	h, err := s.eng.RemuxStream(ctx, v)
	if err != nil {
		s.record(ctx, req, history.OpRemux, "", err)
		return nil, err
	}

	name, err := s.remuxFilename(ctx, v)
	if err != nil {
		h.Close()
		s.record(ctx, req, history.OpRemux, "", err)
		return nil, err
	}

	s.record(ctx, req, history.OpRemux, "", nil)
	return &MediaStream{Body: h, Filename: name}, nil
}

func (s *StreamService) remuxFilename(ctx context.Context, v *engine.Video) (string, error) {
	urls, err := v.URLs(ctx)
	if err != nil {
		return "", err
	}
	if len(urls) == 2 {
		return v.FilenameWithExtension(ctx, "mkv")
	}
	return v.Filename(ctx)
}

// Extractors lists the names of all supported extractors.
func (s *StreamService) Extractors(ctx context.Context) ([]string, error) {
	return s.eng.ListExtractors(ctx)
}

// History returns the newest recorded requests.
func (s *StreamService) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if s.hist == nil {
		return nil, nil
	}
	return s.hist.Recent(ctx, limit)
}

// record writes one history entry. History failures are logged, never
// surfaced: losing a log row must not break a stream.
func (s *StreamService) record(ctx context.Context, req MediaRequest, op, format string, opErr error) {
	if s.hist == nil {
		return
	}

	e := history.Entry{
		PageURL:   req.PageURL,
		Operation: op,
		Format:    format,
		Outcome:   history.OutcomeOK,
	}
	if opErr != nil {
		e.Outcome = history.OutcomeError
		e.Detail = opErr.Error()
	}

	if err := s.hist.Record(ctx, e); err != nil {
		s.logger.Warn("failed to record request history",
			"page_url", req.PageURL,
			"operation", op,
			"error", err,
		)
	}
}

// ParseBitrate parses a client-supplied bitrate in kbit/s, falling back
// to the default when absent and rejecting garbage.
func ParseBitrate(raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
