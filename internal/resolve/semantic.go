// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/paper-ingest/internal/httputil"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

const semanticFields = "title,abstract,authors,externalIds,year,venue,fieldsOfStudy"

// Semantic Scholar API JSON structures.
type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	Year          int                 `json:"year"`
	Venue         string              `json:"venue"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
	FieldsOfStudy []string            `json:"fieldsOfStudy"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

// SemanticScholar looks up a DOI in the Semantic Scholar graph API.
func (r *Resolver) SemanticScholar(ctx context.Context, doi string) (*Metadata, error) {
	apiURL := r.endpoints.SemanticScholar + "DOI:" + url.PathEscape(doi) +
		"?" + url.Values{"fields": {semanticFields}}.Encode()
	req, err := r.newRequest(ctx, apiURL)
	if err != nil {
		return nil, err
	}
	if r.cfg.SemanticScholarAPIKey != "" {
		req.Header.Set("x-api-key", r.cfg.SemanticScholarAPIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, r.client, req, r.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: Semantic Scholar %s", ErrNoMatch, doi)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var p semanticPaper
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	if p.Title == "" {
		return nil, fmt.Errorf("%w: Semantic Scholar %s has no title", ErrNoMatch, doi)
	}

	md := &Metadata{
		Title:    p.Title,
		Abstract: p.Abstract,
		Year:     p.Year,
		Venue:    p.Venue,
		DOI:      p.ExternalIDs.DOI,
		Keywords: p.FieldsOfStudy,
		Source:   types.SourceSemanticScholar,
	}
	if md.DOI == "" {
		md.DOI = doi
	}
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		names = append(names, a.Name)
	}
	md.Authors = cleanAuthors(names)
	return md, nil
}
