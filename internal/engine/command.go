package engine

import (
	"context"
	"fmt"
	"regexp"

	"streamgate/internal/domain"
)

// timePattern matches [[hours:]minutes:]seconds with an optional
// fractional part, e.g. "90", "1:30", "0:01:30", "5.5".
var timePattern = regexp.MustCompile(`^(\d+:){0,2}\d+(\.\d+)?$`)

func validateTime(value string) error {
	if !timePattern.MatchString(value) {
		return &domain.InvalidTimeError{Value: value}
	}
	return nil
}

// rtmpProperties maps metadata fields to transcoder RTMP flags, in the
// order they are emitted. Connection parameters follow last.
var rtmpProperties = []struct {
	field string
	flag  string
}{
	{"url", "-rtmp_tcurl"},
	{"webpage_url", "-rtmp_pageurl"},
	{"player_url", "-rtmp_swfverify"},
	{"flash_version", "-rtmp_flashver"},
	{"play_path", "-rtmp_playpath"},
	{"app", "-rtmp_app"},
}

// rtmpArguments derives the transcoder's RTMP flag/value pairs from the
// document. Only fields present in the document are emitted. Empty for
// non-RTMP protocols.
func rtmpArguments(doc domain.Metadata) []string {
	if doc.Protocol() != domain.ProtocolRTMP {
		return nil
	}

	var args []string
	for _, p := range rtmpProperties {
		if value, ok := doc.RTMPField(p.field); ok {
			args = append(args, p.flag, value)
		}
	}
	for _, conn := range doc.RTMPConn() {
		args = append(args, "-rtmp_conn", conn)
	}
	return args
}

// ConvertOptions parametrize a generic transcode.
type ConvertOptions struct {
	// Ext is the requested output container.
	Ext string
	// BitrateKbps is the requested audio bitrate.
	BitrateKbps int
	// AudioOnly disables the video stream.
	AudioOnly bool
	// Start and End trim the output; both use [[hh:]mm:]ss notation
	// and are validated before synthesis.
	Start string
	End   string
}

// convertArgs synthesizes the generic-transcode argument vector. The
// user agent is fetched via a dedicated extractor property query; some
// hosts reject the direct URL without the exact extractor-reported
// agent.
func (e *Engine) convertArgs(ctx context.Context, v *Video, doc domain.Metadata, url string, opts ConvertOptions) ([]string, error) {
	if opts.Start != "" {
		if err := validateTime(opts.Start); err != nil {
			return nil, err
		}
	}
	if opts.End != "" {
		if err := validateTime(opts.End); err != nil {
			return nil, err
		}
	}

	args := []string{"-loglevel", e.transcoder.Verbosity}
	// A single RTMP URL can still be converted off the passthrough path.
	args = append(args, rtmpArguments(doc)...)
	args = append(args,
		"-i", url,
		"-f", opts.Ext,
		"-b:a", fmt.Sprintf("%dk", opts.BitrateKbps),
	)
	if opts.AudioOnly {
		args = append(args, "-vn")
	}
	if opts.Start != "" {
		args = append(args, "-ss", opts.Start)
	}
	if opts.End != "" {
		args = append(args, "-to", opts.End)
	}
	args = append(args, "pipe:1")

	ua, err := v.userAgent(ctx)
	if err != nil {
		return nil, err
	}
	args = append(args, "-user_agent", ua)

	return args, nil
}

// m3uRemuxArgs synthesizes the HLS playlist remux vector: stream copy
// into the document's native container, ADTS framing fixed for the
// audio bitstream, fragmented output so the result is streamable
// without seeking.
func (e *Engine) m3uRemuxArgs(doc domain.Metadata, url string) []string {
	return []string{
		"-loglevel", e.transcoder.Verbosity,
		"-i", url,
		"-f", doc.Ext(),
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		"-movflags", "frag_keyframe+empty_moov",
		"pipe:1",
	}
}

// dualRemuxArgs synthesizes the dual-source remux vector: video from
// the first input, audio from the second, stream-copied into Matroska
// (a container that needs no seeking on write).
func (e *Engine) dualRemuxArgs(urls []string) []string {
	return []string{
		"-loglevel", e.transcoder.Verbosity,
		"-i", urls[0],
		"-i", urls[1],
		"-c", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-f", "matroska",
		"pipe:1",
	}
}

// rtmpPassthroughArgs synthesizes the RTMP passthrough vector: the full
// RTMP argument set, then the source copied into its native container.
func (e *Engine) rtmpPassthroughArgs(doc domain.Metadata, url string) []string {
	args := []string{"-loglevel", e.transcoder.Verbosity}
	args = append(args, rtmpArguments(doc)...)
	args = append(args,
		"-i", url,
		"-f", doc.Ext(),
		"pipe:1",
	)
	return args
}
