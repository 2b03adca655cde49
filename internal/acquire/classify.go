// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire turns an import reference into validated document bytes:
// it classifies the input, downloads remote content or reads local files,
// and checks the document signature.
package acquire

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind classifies an import reference.
type Kind int

const (
	KindUnknown Kind = iota
	KindArxiv
	KindDOI
	KindURL
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindArxiv:
		return "arxiv"
	case KindDOI:
		return "doi"
	case KindURL:
		return "url"
	case KindLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Reference is the classified form of an import input.
type Reference struct {
	Kind Kind

	// ID is the arXiv id (with version suffix when given) or the DOI.
	ID string

	// URL is the input when it was a URL, for any kind.
	URL string

	// Path is the input for local references.
	Path string
}

// Base URLs for fetch URL derivation. Declared as vars so tests can
// substitute httptest servers.
var (
	arxivPDFBase = "https://arxiv.org/pdf/"
	doiBase      = "https://doi.org/"
)

var (
	// arxivURLPattern matches arxiv.org abs/pdf/html/format pages:
	// "https://arxiv.org/abs/2301.07041v2".
	arxivURLPattern = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf|html|format)/(\d{4}\.\d{4,5}(?:v\d+)?)`)

	// arxivBarePattern matches "2301.07041", "arXiv:2301.07041v2".
	arxivBarePattern = regexp.MustCompile(`^(?i:arxiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

	// doiBarePattern matches "10.1145/1234567" and "doi:10.1145/1234567".
	doiBarePattern = regexp.MustCompile(`^(?i:doi:\s*)?(10\.\d{4,}/\S+)$`)

	// doiURLPattern matches doi.org resolver URLs (also dx. and www.), with
	// or without scheme.
	doiURLPattern = regexp.MustCompile(`(?i)^(?:https?://)?(?:(?:dx|www)\.)?doi\.org/(10\.\d{4,}/\S+)$`)

	// doiInTextPattern finds a DOI anywhere in a URL path.
	doiInTextPattern = regexp.MustCompile(`10\.\d{4,}/[^\s?#&]+`)
)

// Classify determines the kind of an import input and extracts its canonical
// identifier. It performs no I/O. Rules are evaluated in order: arXiv, DOI,
// http(s) URL, local path. Empty input is KindUnknown.
func Classify(input string) Reference {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reference{Kind: KindUnknown}
	}

	isURL := isHTTPURL(input)
	ref := Reference{}
	if isURL {
		ref.URL = input
	}

	if m := arxivURLPattern.FindStringSubmatch(input); m != nil {
		ref.Kind, ref.ID = KindArxiv, m[1]
		return ref
	}
	if m := arxivBarePattern.FindStringSubmatch(input); m != nil {
		ref.Kind, ref.ID = KindArxiv, m[1]
		return ref
	}

	if m := doiBarePattern.FindStringSubmatch(input); m != nil {
		ref.Kind, ref.ID = KindDOI, m[1]
		return ref
	}
	if m := doiURLPattern.FindStringSubmatch(input); m != nil {
		doi := m[1]
		if unescaped, err := url.PathUnescape(doi); err == nil {
			doi = unescaped
		}
		ref.Kind, ref.ID = KindDOI, doi
		return ref
	}

	if isURL {
		ref.Kind = KindURL
		return ref
	}

	return Reference{Kind: KindLocal, Path: input}
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FetchURL returns the download URL for a remote reference. arXiv pages of
// any flavour map to the PDF endpoint; DOIs go through the doi.org resolver.
// Local and unknown references have no fetch URL.
func FetchURL(ref Reference) string {
	switch ref.Kind {
	case KindArxiv:
		return arxivPDFBase + ref.ID
	case KindDOI:
		return doiBase + ref.ID
	case KindURL:
		return ref.URL
	default:
		return ""
	}
}

// Filename returns a human-readable stem used as the last-resort title.
func Filename(ref Reference) string {
	switch ref.Kind {
	case KindArxiv:
		return ref.ID
	case KindDOI:
		return ref.ID
	case KindURL:
		u, err := url.Parse(ref.URL)
		if err != nil {
			return ref.URL
		}
		base := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
		if base == "" || base == "." || base == "/" {
			return u.Hostname()
		}
		if unescaped, err := url.PathUnescape(base); err == nil {
			base = unescaped
		}
		return base
	case KindLocal:
		return strings.TrimSuffix(filepath.Base(ref.Path), filepath.Ext(ref.Path))
	default:
		return ""
	}
}

// DOIFromURL returns a DOI embedded in the path of rawURL, or "".
func DOIFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := u.Path
	if unescaped, err := url.PathUnescape(u.EscapedPath()); err == nil {
		path = unescaped
	}
	doi := doiInTextPattern.FindString(path)
	if doi == "" {
		return ""
	}
	doi = strings.TrimSuffix(doi, ".pdf")
	return strings.TrimRight(doi, ".,;:/")
}
