// Package engine is the stream-selection and command-synthesis core:
// it resolves extractor metadata per video, picks the streaming
// strategy the media's protocol and topology allow, synthesizes the
// transcoder command for it, and supervises the resulting byte stream.
package engine

import (
	"context"
	"io"
	"os/exec"

	"streamgate/internal/config"
	"streamgate/internal/domain"
)

// userAgentFlag is the extractor property query used to fetch the exact
// user agent the media host expects.
const userAgentFlag = "--dump-user-agent"

// Resolver is the extractor boundary the engine consumes.
// *extractor.Client implements it.
type Resolver interface {
	Metadata(ctx context.Context, pageURL, format, password string) (domain.Metadata, error)
	Filename(ctx context.Context, pageURL, format, password string) (string, error)
	Property(ctx context.Context, flag, pageURL, format, password string) (string, error)
	Extractors(ctx context.Context) ([]string, error)
}

// Fetcher streams a remote media URL over HTTP with forwarded headers.
// *downloader.Client implements it.
type Fetcher interface {
	Stream(ctx context.Context, url string, headers map[string]string, referer string) (io.ReadCloser, error)
}

// Engine holds the process-wide configuration shared by every Video:
// the extractor boundary, the raw HTTP fetcher and the transcoder
// binary. Read-only after construction.
type Engine struct {
	resolver   Resolver
	fetcher    Fetcher
	transcoder config.TranscoderConfig

	// seams for tests
	verify func(ctx context.Context) error
	launch func(ctx context.Context, name string, args []string) (*StreamHandle, error)
}

// New creates an engine. The transcoder path is taken as given; it is
// verified with a version query before each transcoding stream opens.
func New(resolver Resolver, fetcher Fetcher, transcoder config.TranscoderConfig) *Engine {
	e := &Engine{
		resolver:   resolver,
		fetcher:    fetcher,
		transcoder: transcoder,
	}
	e.verify = e.checkTranscoder
	e.launch = launchProcess
	return e
}

// ListExtractors enumerates the names of all supported extractors.
func (e *Engine) ListExtractors(ctx context.Context) ([]string, error) {
	return e.resolver.Extractors(ctx)
}

// VerifyTranscoder reports whether the transcoder binary responds to a
// version query. Readiness probes use it.
func (e *Engine) VerifyTranscoder(ctx context.Context) error {
	return e.verify(ctx)
}

// checkTranscoder runs a trivial version query against the transcoder
// binary. Failure means the environment is broken and no pipe should be
// opened at all.
func (e *Engine) checkTranscoder(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, e.transcoder.Path, "-version")
	if err := cmd.Run(); err != nil {
		return &domain.TranscoderUnavailableError{Path: e.transcoder.Path, Err: err}
	}
	return nil
}
