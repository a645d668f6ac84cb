package downloader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamgate/internal/config"
)

func TestStream_ForwardsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte("media bytes"))
	}))
	defer srv.Close()

	c := New(config.DownloadConfig{UserAgent: "fallback-agent"})
	rc, err := c.Stream(context.Background(), srv.URL, map[string]string{
		"User-Agent": "doc-agent",
		"Cookie":     "session=1",
		"Referer":    "https://merged.example/",
	}, "https://transport.example/")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(data) != "media bytes" {
		t.Errorf("body = %q", data)
	}

	if got.Get("User-Agent") != "doc-agent" {
		t.Errorf("User-Agent = %q, want forwarded header", got.Get("User-Agent"))
	}
	if got.Get("Cookie") != "session=1" {
		t.Errorf("Cookie = %q", got.Get("Cookie"))
	}
	// A Referer already in the header map wins over the transport one.
	if got.Get("Referer") != "https://merged.example/" {
		t.Errorf("Referer = %q, want header map value", got.Get("Referer"))
	}
}

func TestStream_RefererFallback(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Referer")
	}))
	defer srv.Close()

	c := New(config.DownloadConfig{UserAgent: "fallback-agent"})
	rc, err := c.Stream(context.Background(), srv.URL, nil, "https://transport.example/")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer rc.Close()

	if got != "https://transport.example/" {
		t.Errorf("Referer = %q, want transport value", got)
	}
}

func TestStream_UserAgentFallback(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := New(config.DownloadConfig{UserAgent: "fallback-agent"})
	rc, err := c.Stream(context.Background(), srv.URL, nil, "")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	rc.Close()

	if got != "fallback-agent" {
		t.Errorf("User-Agent = %q, want fallback", got)
	}
}

func TestStream_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"forbidden", http.StatusForbidden},
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := New(config.DownloadConfig{})
			_, err := c.Stream(context.Background(), srv.URL, nil, "")

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("error = %v, want *StatusError", err)
			}
			if statusErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.status)
			}
		})
	}
}

func TestStream_PartialContentAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("tail"))
	}))
	defer srv.Close()

	c := New(config.DownloadConfig{})
	rc, err := c.Stream(context.Background(), srv.URL, map[string]string{"Range": "bytes=10-"}, "")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "tail" {
		t.Errorf("body = %q", data)
	}
}

func TestStream_UnreachableHost(t *testing.T) {
	c := New(config.DownloadConfig{})
	_, err := c.Stream(context.Background(), "http://127.0.0.1:1/media", nil, "")
	if err == nil {
		t.Fatal("Stream should fail against a closed port")
	}
}
