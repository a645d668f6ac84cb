package engine

import (
	"context"
	"errors"

	"streamgate/internal/domain"
)

// AudioStream opens an audio-only transcode of the video: mp3 at the
// requested bitrate, optionally trimmed.
func (e *Engine) AudioStream(ctx context.Context, v *Video, bitrateKbps int, start, end string) (*StreamHandle, error) {
	return e.ConvertedStream(ctx, v, ConvertOptions{
		Ext:         "mp3",
		BitrateKbps: bitrateKbps,
		AudioOnly:   true,
		Start:       start,
		End:         end,
	})
}

// ConvertedStream opens a generic transcode of the video into the
// requested container and bitrate.
//
// Topology rules, in order: playlists are never transcoded; segmented
// protocols (HLS variants, DASH segments) cannot be converted; more
// than one resolved URL means the caller wanted a remux, which cannot
// be combined with a conversion.
func (e *Engine) ConvertedStream(ctx context.Context, v *Video, opts ConvertOptions) (*StreamHandle, error) {
	doc, err := v.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	if doc.IsPlaylist() {
		return nil, domain.ErrPlaylistConversion
	}
	if doc.IsSegmented() {
		return nil, &domain.ProtocolError{Protocol: doc.Protocol()}
	}

	urls, err := v.URLs(ctx)
	if err != nil {
		return nil, err
	}
	if len(urls) > 1 {
		return nil, domain.ErrRemuxConflict
	}

	args, err := e.convertArgs(ctx, v, doc, urls[0], opts)
	if err != nil {
		return nil, err
	}

	if err := e.verify(ctx); err != nil {
		return nil, err
	}
	return e.launch(ctx, e.transcoder.Path, args)
}

// RemuxStream opens a repackaging stream for the video without
// re-encoding. The strategy depends on the resolved topology:
// exactly two URLs remux video+audio into one Matroska stream, an HLS
// playlist remuxes into its native container, RTMP passes through.
//
// DASH segment lists are rejected alongside conversions: unlike an HLS
// playlist they are not a single transcoder-consumable input, so the
// segmented-protocol rule applies to them uniformly.
func (e *Engine) RemuxStream(ctx context.Context, v *Video) (*StreamHandle, error) {
	doc, err := v.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	if doc.IsPlaylist() {
		return nil, domain.ErrPlaylistConversion
	}
	if doc.Protocol() == domain.ProtocolDASHSegment {
		return nil, &domain.ProtocolError{Protocol: doc.Protocol()}
	}

	urls, err := v.URLs(ctx)
	if err != nil {
		// Zero resolved URLs is still a remux topology problem.
		if errors.Is(err, domain.ErrEmptyURL) {
			return nil, domain.ErrRemuxNeedsTwoURLs
		}
		return nil, err
	}

	var args []string
	switch {
	case len(urls) > 2:
		return nil, domain.ErrRemuxConflict
	case len(urls) == 2:
		args = e.dualRemuxArgs(urls)
	case doc.Protocol() == domain.ProtocolM3U8 || doc.Protocol() == domain.ProtocolM3U8Native:
		args = e.m3uRemuxArgs(doc, urls[0])
	case doc.Protocol() == domain.ProtocolRTMP:
		args = e.rtmpPassthroughArgs(doc, urls[0])
	default:
		return nil, domain.ErrRemuxNeedsTwoURLs
	}

	if err := e.verify(ctx); err != nil {
		return nil, err
	}
	return e.launch(ctx, e.transcoder.Path, args)
}

// RawStream opens the first resolved media URL directly over HTTP with
// the document's own headers forwarded, no transcoding involved.
// Caller overrides win on header collision.
func (e *Engine) RawStream(ctx context.Context, v *Video, overrides map[string]string) (*RawHandle, error) {
	doc, err := v.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	urls, err := v.URLs(ctx)
	if err != nil {
		return nil, err
	}

	docHeaders := doc.HTTPHeaders()
	headers := make(map[string]string, len(docHeaders)+len(overrides))
	for k, val := range docHeaders {
		headers[k] = val
	}
	for k, val := range overrides {
		headers[k] = val
	}

	// The document's Referer also rides along at the transport layer,
	// separately from the merged header map. Some hosts only accept the
	// request that way; the duplication is deliberate, not a bug. A
	// caller override still wins here, the same as in the map.
	referer := docHeaders["Referer"]
	if override, ok := overrides["Referer"]; ok {
		referer = override
	}
	rc, err := e.fetcher.Stream(ctx, urls[0], headers, referer)
	if err != nil {
		return nil, err
	}
	return &RawHandle{rc: rc}, nil
}
