// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/paper-ingest/internal/httputil"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI             string           `json:"DOI"`
	Title           []string         `json:"title"`
	ContainerTitle  []string         `json:"container-title"`
	Abstract        string           `json:"abstract"`
	Author          []crossrefAuthor `json:"author"`
	Subject         []string         `json:"subject"`
	Issued          crossrefDate     `json:"issued"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	PublishedOnline crossrefDate     `json:"published-online"`
	Created         crossrefDate     `json:"created"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]*int `json:"date-parts"`
}

func (d crossrefDate) year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == nil {
		return 0
	}
	return *d.DateParts[0][0]
}

// jatsTag matches the JATS markup CrossRef embeds in abstracts.
var jatsTag = regexp.MustCompile(`<[^>]+>`)

// CrossRef looks up a DOI in the CrossRef works API.
func (r *Resolver) CrossRef(ctx context.Context, doi string) (*Metadata, error) {
	req, err := r.newRequest(ctx, r.endpoints.CrossRef+url.PathEscape(doi))
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, r.client, req, r.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: CrossRef %s", ErrNoMatch, doi)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return crossrefMetadata(cr.Message, doi), nil
}

func crossrefMetadata(w crossrefWork, doi string) *Metadata {
	md := &Metadata{
		DOI:      w.DOI,
		Abstract: strings.Join(strings.Fields(jatsTag.ReplaceAllString(w.Abstract, " ")), " "),
		Keywords: w.Subject,
		Source:   types.SourceCrossRef,
	}
	if md.DOI == "" {
		md.DOI = doi
	}
	if len(w.Title) > 0 {
		md.Title = strings.Join(strings.Fields(w.Title[0]), " ")
	}
	if len(w.ContainerTitle) > 0 {
		md.Venue = w.ContainerTitle[0]
	}

	names := make([]string, 0, len(w.Author))
	for _, a := range w.Author {
		if a.Name != "" {
			names = append(names, a.Name)
			continue
		}
		names = append(names, a.Given+" "+a.Family)
	}
	md.Authors = cleanAuthors(names)

	for _, d := range []crossrefDate{w.Issued, w.PublishedPrint, w.PublishedOnline, w.Created} {
		if y := d.year(); y > 0 {
			md.Year = y
			break
		}
	}
	return md
}
