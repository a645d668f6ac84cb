package engine

import (
	"context"
	"strings"

	"streamgate/internal/domain"
)

// Video is the per-request value object: a page URL, a format selector
// and an optional password, plus the metadata document cached after the
// first resolution. A different format selector means a different
// Video; the identity fields never change after construction.
//
// The metadata cache is a one-shot cell (unresolved, then either a
// document or an error, forever). It is not synchronized: a Video is
// meant to be driven by a single caller (callers sharing one across
// goroutines must lock).
type Video struct {
	eng *Engine

	pageURL  string
	format   string
	password string

	resolved bool
	doc      domain.Metadata
	docErr   error
}

// NewVideo creates a Video for a page URL with an optional format
// selector and password. No subprocess runs until metadata is needed.
func (e *Engine) NewVideo(pageURL, format, password string) *Video {
	return &Video{
		eng:      e,
		pageURL:  pageURL,
		format:   format,
		password: password,
	}
}

// PageURL returns the webpage URL this Video was created for.
func (v *Video) PageURL() string { return v.pageURL }

// Format returns the requested format selector, if any.
func (v *Video) Format() string { return v.format }

// Metadata returns the extractor metadata document, invoking the
// extractor on first call and returning the cached outcome (document
// or error) on every later call.
func (v *Video) Metadata(ctx context.Context) (domain.Metadata, error) {
	if !v.resolved {
		v.doc, v.docErr = v.eng.resolver.Metadata(ctx, v.pageURL, v.format, v.password)
		v.resolved = true
	}
	return v.doc, v.docErr
}

// URLs returns the direct media URLs resolved for this Video: the raw
// URL field, trailing whitespace dropped, split on line breaks, one
// element per selected rendition (two when independent video and audio
// selectors were requested). Validity is judged on the first element
// alone; an empty first line fails even when later lines hold URLs.
func (v *Video) URLs(ctx context.Context) ([]string, error) {
	doc, err := v.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	raw := strings.TrimRight(doc.RawURL(), " \t\r\n")
	urls := strings.Split(raw, "\n")
	for i := range urls {
		urls[i] = strings.TrimSpace(urls[i])
	}
	if urls[0] == "" {
		return nil, domain.ErrEmptyURL
	}
	return urls, nil
}

// Filename returns the filename the extractor would use, trimmed.
func (v *Video) Filename(ctx context.Context) (string, error) {
	return v.eng.resolver.Filename(ctx, v.pageURL, v.format, v.password)
}

// FilenameWithExtension returns the resolved filename with the
// document's container extension swapped for the given one. The
// substitution is an exact suffix match on the first occurrence of
// ".<ext>".
func (v *Video) FilenameWithExtension(ctx context.Context, ext string) (string, error) {
	doc, err := v.Metadata(ctx)
	if err != nil {
		return "", err
	}
	name, err := v.Filename(ctx)
	if err != nil {
		return "", err
	}
	return strings.Replace(name, "."+doc.Ext(), "."+ext, 1), nil
}

// userAgent fetches the user agent the media host expects via a
// dedicated extractor property query.
func (v *Video) userAgent(ctx context.Context) (string, error) {
	return v.eng.resolver.Property(ctx, userAgentFlag, v.pageURL, v.format, v.password)
}
