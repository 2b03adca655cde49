// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives paper metadata from a document's embedded
// properties and its raw text. Each field has its own ordered chain of
// heuristics; a failure in one field never affects another.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrDegraded marks a field whose extraction failed. It is informational:
// the field is reported absent and the import continues.
var ErrDegraded = errors.New("metadata extraction degraded")

// Info holds the embedded document properties.
type Info struct {
	Title        string
	Author       string
	CreationDate string
}

// Document is the extractor input: embedded properties plus body text.
type Document struct {
	Info  Info
	Text  string
	Pages int
}

// Metadata is the locally extracted metadata. Zero values mean absent.
type Metadata struct {
	Title    string
	Authors  []string
	Year     int
	DOI      string
	Abstract string
	Keywords []string
}

// FieldError records a degraded field.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e FieldError) Unwrap() error { return e.Err }

// Result is the outcome of a single heuristic. Found is false when the
// heuristic had no data; Err is set only when it failed.
type Result[T any] struct {
	Value T
	Found bool
	Err   error
}

func found[T any](v T) Result[T] { return Result[T]{Value: v, Found: true} }

func missing[T any]() Result[T] { return Result[T]{} }

// guard runs fn and turns a panic into a degraded Result.
func guard[T any](field string, fn func() Result[T]) (r Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			r = Result[T]{Err: fmt.Errorf("%w: %s: %v", ErrDegraded, field, p)}
		}
	}()
	return fn()
}

// Extractor runs the per-field heuristic chains.
type Extractor struct {
	now      func() time.Time
	maxPages int
	logger   *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used for the upper bound on plausible years.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithMaxPages limits how many pages ReadPDF reads. Metadata lives on the
// first pages, so the default is 3.
func WithMaxPages(n int) Option {
	return func(e *Extractor) { e.maxPages = n }
}

// WithLogger sets the logger used for degraded fields.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now, maxPages: 3, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromPDF reads data as a PDF and extracts metadata. A document that cannot
// be parsed yields a degraded "text" field and metadata derived from
// filename alone.
func (e *Extractor) FromPDF(data []byte, filename string) (Metadata, []FieldError) {
	doc, err := ReadPDF(data, e.maxPages)
	if err != nil {
		md, errs := e.Extract(Document{}, filename)
		errs = append([]FieldError{{Field: "text", Err: fmt.Errorf("%w: %w", ErrDegraded, err)}}, errs...)
		e.logDegraded(errs)
		return md, errs
	}
	md, errs := e.Extract(doc, filename)
	e.logDegraded(errs)
	return md, errs
}

// Extract runs every field chain over doc. filename is the title of last
// resort.
func (e *Extractor) Extract(doc Document, filename string) (Metadata, []FieldError) {
	var (
		md   Metadata
		errs []FieldError
	)
	note := func(field string, err error) {
		if err != nil {
			errs = append(errs, FieldError{Field: field, Err: err})
		}
	}

	now := e.now()

	md.Title = firstString(note, "title",
		func() Result[string] { return TitleFromInfo(doc.Info.Title) },
		func() Result[string] { return TitleFromText(doc.Text) },
		func() Result[string] { return titleFromFilename(filename) },
	)

	for _, step := range []func() Result[[]string]{
		func() Result[[]string] { return AuthorsFromInfo(doc.Info.Author) },
		func() Result[[]string] { return AuthorsFromText(doc.Text) },
		func() Result[[]string] { return AuthorsNearEmails(doc.Text) },
	} {
		r := guard("authors", step)
		note("authors", r.Err)
		if r.Found {
			md.Authors = r.Value
			break
		}
	}

	for _, step := range []func() Result[int]{
		func() Result[int] { return YearFromCreationDate(doc.Info.CreationDate, now) },
		func() Result[int] { return YearFromText(doc.Text, now) },
	} {
		r := guard("year", step)
		note("year", r.Err)
		if r.Found {
			md.Year = r.Value
			break
		}
	}

	md.DOI = firstString(note, "doi", func() Result[string] { return DOIFromText(doc.Text) })
	md.Abstract = firstString(note, "abstract", func() Result[string] { return AbstractFromText(doc.Text) })

	kw := guard("keywords", func() Result[[]string] { return KeywordsFromText(doc.Text) })
	note("keywords", kw.Err)
	if kw.Found {
		md.Keywords = kw.Value
	}

	return md, errs
}

func firstString(note func(string, error), field string, steps ...func() Result[string]) string {
	for _, step := range steps {
		r := guard(field, step)
		note(field, r.Err)
		if r.Found {
			return r.Value
		}
	}
	return ""
}

func titleFromFilename(filename string) Result[string] {
	t := collapseSpace(filename)
	if t == "" {
		return missing[string]()
	}
	return found(t)
}

func (e *Extractor) logDegraded(errs []FieldError) {
	for _, fe := range errs {
		e.logger.Info("metadata field degraded", zap.String("field", fe.Field), zap.Error(fe.Err))
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
