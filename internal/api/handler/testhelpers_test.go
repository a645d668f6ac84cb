package handler

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"streamgate/internal/history"
	"streamgate/internal/service"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockStreamService is a test implementation of StreamService.
type mockStreamService struct {
	info    *service.InfoResult
	infoErr error

	streamBody string
	filename   string
	streamErr  error

	extractors []string
	entries    []history.Entry
	histErr    error

	// recorded arguments
	lastReq     service.MediaRequest
	lastHeaders map[string]string
	lastBitrate int
	lastFrom    string
	lastTo      string
	lastExt     string
}

func (m *mockStreamService) Info(ctx context.Context, req service.MediaRequest) (*service.InfoResult, error) {
	m.lastReq = req
	if m.infoErr != nil {
		return nil, m.infoErr
	}
	return m.info, nil
}

func (m *mockStreamService) stream() (*service.MediaStream, error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	return &service.MediaStream{
		Body:     io.NopCloser(strings.NewReader(m.streamBody)),
		Filename: m.filename,
	}, nil
}

func (m *mockStreamService) Raw(ctx context.Context, req service.MediaRequest, headers map[string]string) (*service.MediaStream, error) {
	m.lastReq = req
	m.lastHeaders = headers
	return m.stream()
}

func (m *mockStreamService) Audio(ctx context.Context, req service.MediaRequest, bitrateKbps int, from, to string) (*service.MediaStream, error) {
	m.lastReq = req
	m.lastBitrate = bitrateKbps
	m.lastFrom = from
	m.lastTo = to
	return m.stream()
}

func (m *mockStreamService) Convert(ctx context.Context, req service.MediaRequest, ext string, bitrateKbps int) (*service.MediaStream, error) {
	m.lastReq = req
	m.lastExt = ext
	m.lastBitrate = bitrateKbps
	return m.stream()
}

func (m *mockStreamService) Remux(ctx context.Context, req service.MediaRequest) (*service.MediaStream, error) {
	m.lastReq = req
	return m.stream()
}

func (m *mockStreamService) Extractors(ctx context.Context) ([]string, error) {
	return m.extractors, nil
}

func (m *mockStreamService) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if m.histErr != nil {
		return nil, m.histErr
	}
	return m.entries, nil
}
