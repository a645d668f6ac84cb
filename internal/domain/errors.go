package domain

import (
	"errors"
	"fmt"
)

// Engine-side policy errors.
var (
	// ErrEmptyURL is returned when the extractor resolved no usable media URL.
	ErrEmptyURL = errors.New("resolved media URL is empty")

	// ErrPlaylistConversion is returned when a conversion is requested on a
	// playlist; playlists may only be enumerated.
	ErrPlaylistConversion = errors.New("conversion of playlists is not supported")

	// ErrRemuxConflict is returned when a single-stream conversion is
	// requested but more than one media URL was resolved.
	ErrRemuxConflict = errors.New("cannot convert and remux at the same time")

	// ErrRemuxNeedsTwoURLs is returned when a combined stream is requested
	// but the video does not have exactly two media URLs.
	ErrRemuxNeedsTwoURLs = errors.New("video does not have two URLs")
)

// PasswordRequiredError means the page is protected and no password was
// supplied. Expected, user-actionable: callers should prompt, not crash.
type PasswordRequiredError struct {
	ExitCode int
}

func (e *PasswordRequiredError) Error() string {
	return "video is protected by a password"
}

// WrongPasswordError means the supplied password was rejected.
type WrongPasswordError struct {
	ExitCode int
}

func (e *WrongPasswordError) Error() string {
	return "wrong password"
}

// ExtractorError is any other extractor subprocess failure.
type ExtractorError struct {
	Cmd      string
	Stderr   string
	ExitCode int
}

func (e *ExtractorError) Error() string {
	return fmt.Sprintf("extractor failed (exit %d): %s (command: %s)", e.ExitCode, e.Stderr, e.Cmd)
}

// TranscoderUnavailableError means the transcoder binary did not answer
// a version query. Environment fault: report, don't retry.
type TranscoderUnavailableError struct {
	Path string
	Err  error
}

func (e *TranscoderUnavailableError) Error() string {
	return fmt.Sprintf("transcoder %s is not usable: %v", e.Path, e.Err)
}

func (e *TranscoderUnavailableError) Unwrap() error { return e.Err }

// TranscoderError is a transcoder subprocess failure. Stderr is
// surfaced verbatim, never parsed.
type TranscoderError struct {
	Cmd    string
	Stderr string
}

func (e *TranscoderError) Error() string {
	return fmt.Sprintf("transcoder failed: %s (command: %s)", e.Stderr, e.Cmd)
}

// ProtocolError means the requested operation cannot be applied to the
// media's delivery protocol.
type ProtocolError struct {
	Protocol string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("conversion of %s streams is not supported", e.Protocol)
}

// InvalidTimeError means a start/end trim value does not match the
// [[hours:]minutes:]seconds pattern.
type InvalidTimeError struct {
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time value: %q", e.Value)
}

// PipeError means the subprocess output pipe could not be established.
// Environment fault: no stream handle is ever returned on top of it.
type PipeError struct {
	Err error
}

func (e *PipeError) Error() string {
	return fmt.Sprintf("cannot open subprocess pipe: %v", e.Err)
}

func (e *PipeError) Unwrap() error { return e.Err }
