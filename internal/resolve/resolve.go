// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve looks up structured metadata for classified references in
// external catalogs: arXiv for arXiv ids, CrossRef then Semantic Scholar for
// DOIs. Generic URLs resolve to a bare record tagged as a URL source.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Lookup failures. The importer treats every resolver error as "no
// structured metadata" and continues with local extraction.
var (
	ErrNoMatch   = errors.New("no matching record")
	ErrAmbiguous = errors.New("ambiguous match")
)

// Metadata is the structured record returned by a catalog. Zero values mean
// the catalog did not supply the field.
type Metadata struct {
	Title    string
	Authors  []string
	Venue    string
	Year     int
	DOI      string
	Abstract string
	Keywords []string
	Source   types.Source

	// Placeholder marks the minimal record returned for a DOI that no
	// catalog could resolve. Only its DOI is meaningful.
	Placeholder bool
}

// Endpoints holds the catalog base URLs. Tests point them at httptest servers.
type Endpoints struct {
	Arxiv           string
	CrossRef        string
	SemanticScholar string
}

// DefaultEndpoints returns the public catalog endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Arxiv:           "https://export.arxiv.org/api/query",
		CrossRef:        "https://api.crossref.org/works/",
		SemanticScholar: "https://api.semanticscholar.org/graph/v1/paper/",
	}
}

// Resolver dispatches a reference to the catalog that can describe it.
type Resolver struct {
	client    *http.Client
	cfg       types.ResolverConfig
	endpoints Endpoints
	logger    *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEndpoints overrides the catalog endpoints.
func WithEndpoints(e Endpoints) Option {
	return func(r *Resolver) { r.endpoints = e }
}

// WithHTTPClient sets the client used for catalog requests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithLogger sets the logger for lookup failures.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns a Resolver for cfg.
func New(cfg types.ResolverConfig, opts ...Option) *Resolver {
	if cfg.UserAgent == "" {
		cfg.UserAgent = types.DefaultUserAgent
	}
	r := &Resolver{
		client:    &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
		endpoints: DefaultEndpoints(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns structured metadata for ref. arXiv lookups fail with
// ErrNoMatch or ErrAmbiguous when the catalog does not return exactly one
// entry. A DOI always resolves: when both catalogs fail (or DOI lookup is
// disabled) the result is a placeholder carrying just the DOI.
func (r *Resolver) Resolve(ctx context.Context, ref acquire.Reference) (*Metadata, error) {
	switch ref.Kind {
	case acquire.KindArxiv:
		return r.Arxiv(ctx, ref.ID)
	case acquire.KindDOI:
		return r.resolveDOI(ctx, ref.ID), nil
	case acquire.KindURL:
		return &Metadata{Source: types.SourceURL}, nil
	default:
		return nil, fmt.Errorf("%w: %s reference", ErrNoMatch, ref.Kind)
	}
}

func (r *Resolver) resolveDOI(ctx context.Context, doi string) *Metadata {
	if !r.cfg.DOILookup {
		return Placeholder(doi)
	}

	md, err := r.CrossRef(ctx, doi)
	if err == nil {
		return md
	}
	r.logger.Warn("CrossRef lookup failed", zap.String("doi", doi), zap.Error(err))
	if ctx.Err() != nil {
		return Placeholder(doi)
	}

	if r.cfg.SemanticScholar {
		md, err = r.SemanticScholar(ctx, doi)
		if err == nil {
			return md
		}
		r.logger.Warn("Semantic Scholar lookup failed", zap.String("doi", doi), zap.Error(err))
	}
	return Placeholder(doi)
}

// Placeholder returns the minimal record for an unresolved DOI.
func Placeholder(doi string) *Metadata {
	return &Metadata{
		Title:       "DOI " + doi,
		DOI:         doi,
		Placeholder: true,
	}
}

// newRequest builds a GET request with the configured User-Agent.
func (r *Resolver) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	return req, nil
}

// cleanAuthors trims names and drops empty entries.
func cleanAuthors(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.Join(strings.Fields(n), " ")
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
