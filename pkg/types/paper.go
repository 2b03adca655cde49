// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-ingest pipeline:
// import requests, progress events, and the metadata draft handed to the
// persistence layer.
package types

// Source identifies which collaborator contributed the metadata of a draft.
type Source string

const (
	SourceURL             Source = "url"
	SourceArxiv           Source = "arxiv"
	SourcePubMed          Source = "pubmed"
	SourceCrossRef        Source = "crossref"
	SourceSemanticScholar Source = "semanticscholar"
	SourcePDF             Source = "pdf"
)

// PaperMetadataDraft is the result of a successful import. It is never
// mutated after it is returned; the persistence layer owns any further change.
type PaperMetadataDraft struct {
	// Title is the paper title. Always non-empty: the filename is the last fallback.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the journal, conference, or repository name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Identifier is the DOI.
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Source identifies the resolver that contributed, or "pdf"/"url" when
	// only local extraction applied.
	Source Source `json:"source" yaml:"source"`

	// FilePath is the content-addressed path of the stored document.
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`

	// ContentHash is the hex SHA-256 of the document bytes.
	ContentHash string `json:"content_hash" yaml:"content_hash"`
}

// RequestKind discriminates an ImportRequest.
type RequestKind int

const (
	RequestRemote RequestKind = iota
	RequestLocal
)

func (k RequestKind) String() string {
	if k == RequestLocal {
		return "local"
	}
	return "remote"
}

// ImportRequest is either a remote URL (or identifier) or a local file path.
// Construct it with RemoteRequest or LocalRequest.
type ImportRequest struct {
	kind   RequestKind
	target string
}

// RemoteRequest returns a request to import from a URL, DOI, or arXiv id.
func RemoteRequest(url string) ImportRequest {
	return ImportRequest{kind: RequestRemote, target: url}
}

// LocalRequest returns a request to import a file from disk.
func LocalRequest(path string) ImportRequest {
	return ImportRequest{kind: RequestLocal, target: path}
}

// Kind reports whether the request is remote or local.
func (r ImportRequest) Kind() RequestKind { return r.kind }

// Target returns the URL or path.
func (r ImportRequest) Target() string { return r.target }

// Stage is the coarse phase reported in progress events.
type Stage string

const (
	StageDownloading Stage = "downloading"
	StageProcessing  Stage = "processing"
	StageComplete    Stage = "complete"
	StageError       Stage = "error"
)

// ImportProgress is one progress event. Percent never decreases within a
// stage of a single import.
type ImportProgress struct {
	Stage    Stage  `json:"stage" yaml:"stage"`
	Percent  int    `json:"percent" yaml:"percent"`
	Message  string `json:"message" yaml:"message"`
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
}

// ImportResult is returned by a successful import.
type ImportResult struct {
	ID       string             `json:"id" yaml:"id"`
	Paper    PaperMetadataDraft `json:"paper" yaml:"paper"`
	FilePath string             `json:"file_path" yaml:"file_path"`
}
