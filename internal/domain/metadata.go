// Package domain holds the core types shared by the streaming engine:
// the extractor metadata document and the error taxonomy.
package domain

import (
	"encoding/json"
	"fmt"
)

// Protocols the extractor reports that this engine treats specially.
const (
	ProtocolRTMP        = "rtmp"
	ProtocolM3U8        = "m3u8"
	ProtocolM3U8Native  = "m3u8_native"
	ProtocolDASHSegment = "http_dash_segments"
)

// TypePlaylist is the document type flag marking a playlist entity.
const TypePlaylist = "playlist"

// Metadata is the decoded output of the extractor for one video. The
// document has no fixed shape; only the fields this engine reads get
// typed accessors. Key presence and key value are distinct: a field
// can be present and empty, and callers that care use Has.
type Metadata struct {
	fields map[string]any
}

// ParseMetadata decodes an extractor metadata dump.
func ParseMetadata(data []byte) (Metadata, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Metadata{}, &ParseError{Err: err}
	}
	return Metadata{fields: fields}, nil
}

// NewMetadata builds a document from already-decoded fields. Used by
// Entries and by tests.
func NewMetadata(fields map[string]any) Metadata {
	return Metadata{fields: fields}
}

// Has reports whether the document contains the given field at all,
// regardless of its value.
func (m Metadata) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

// str returns the field as a string, or "" when absent or not a string.
func (m Metadata) str(key string) string {
	s, _ := m.fields[key].(string)
	return s
}

// Title returns the media title.
func (m Metadata) Title() string { return m.str("title") }

// Protocol returns the delivery protocol ("https", "rtmp", "m3u8", ...).
func (m Metadata) Protocol() string { return m.str("protocol") }

// Ext returns the native container extension.
func (m Metadata) Ext() string { return m.str("ext") }

// Extractor returns the extractor identifier that produced the document.
func (m Metadata) Extractor() string { return m.str("extractor") }

// RawURL returns the raw URL field: one or more direct media URLs
// separated by line breaks.
func (m Metadata) RawURL() string { return m.str("url") }

// Type returns the document's object type flag ("video", "playlist", ...).
func (m Metadata) Type() string { return m.str("_type") }

// IsPlaylist reports whether the document describes a playlist of
// videos rather than a single media object.
func (m Metadata) IsPlaylist() bool { return m.Type() == TypePlaylist }

// IsSegmented reports whether the delivery protocol fetches media as
// many small chunks (HLS variants, DASH segments).
func (m Metadata) IsSegmented() bool {
	switch m.Protocol() {
	case ProtocolM3U8, ProtocolM3U8Native, ProtocolDASHSegment:
		return true
	}
	return false
}

// RTMPField returns the named RTMP connection property and whether it
// is present in the document.
func (m Metadata) RTMPField(key string) (string, bool) {
	v, ok := m.fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// RTMPConn returns the rtmp_conn connection parameter list. The
// extractor emits either a single string or a list.
func (m Metadata) RTMPConn() []string {
	switch v := m.fields["rtmp_conn"].(type) {
	case string:
		return []string{v}
	case []any:
		var conns []string
		for _, c := range v {
			if s, ok := c.(string); ok {
				conns = append(conns, s)
			}
		}
		return conns
	}
	return nil
}

// HTTPHeaders returns the request headers the extractor says the media
// host expects.
func (m Metadata) HTTPHeaders() map[string]string {
	raw, _ := m.fields["http_headers"].(map[string]any)
	if raw == nil {
		return nil
	}
	headers := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			headers[k] = s
		}
	}
	return headers
}

// Entries returns the playlist entries, one document per entry.
func (m Metadata) Entries() []Metadata {
	raw, _ := m.fields["entries"].([]any)
	var entries []Metadata
	for _, e := range raw {
		if fields, ok := e.(map[string]any); ok {
			entries = append(entries, Metadata{fields: fields})
		}
	}
	return entries
}

// ParseError reports extractor output that is not a valid structured
// document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("metadata is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
