// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/paper-ingest/internal/httputil"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	Authors    []arxivAuthor `xml:"author"`
	Links      []arxivLink   `xml:"link"`
	DOI        string        `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef string        `xml:"http://arxiv.org/schemas/atom journal_ref"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

var versionSuffix = regexp.MustCompile(`v\d+$`)

// Arxiv looks up a single arXiv id. The API answers unknown ids with an
// error entry, which is reported as ErrNoMatch.
func (r *Resolver) Arxiv(ctx context.Context, id string) (*Metadata, error) {
	apiURL := r.endpoints.Arxiv + "?id_list=" + url.QueryEscape(id)
	req, err := r.newRequest(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, r.client, req, r.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var entries []arxivEntry
	for _, e := range feed.Entries {
		if strings.Contains(e.ID, "/api/errors") {
			continue
		}
		entries = append(entries, e)
	}
	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("%w: arXiv %s", ErrNoMatch, id)
	case 1:
	default:
		return nil, fmt.Errorf("%w: arXiv %s returned %d entries", ErrAmbiguous, id, len(entries))
	}

	return arxivMetadata(entries[0], id), nil
}

func arxivMetadata(e arxivEntry, id string) *Metadata {
	md := &Metadata{
		Title:    strings.Join(strings.Fields(e.Title), " "),
		Abstract: strings.Join(strings.Fields(e.Summary), " "),
		Venue:    strings.TrimSpace(e.JournalRef),
		Source:   types.SourceArxiv,
	}
	if md.Venue == "" {
		md.Venue = "arXiv"
	}

	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		names = append(names, a.Name)
	}
	md.Authors = cleanAuthors(names)

	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		md.Year = t.Year()
	}

	md.DOI = strings.TrimSpace(e.DOI)
	if md.DOI == "" {
		for _, l := range e.Links {
			if l.Title == "doi" {
				md.DOI = doiFromLink(l.Href)
				break
			}
		}
	}
	if md.DOI == "" {
		md.DOI = "10.48550/arXiv." + versionSuffix.ReplaceAllString(id, "")
	}

	// Category codes (cs.LG) are a classification, not author keywords, so
	// Keywords stays empty and the document's own list is used.
	return md
}

// doiFromLink strips the resolver host from a DOI link.
func doiFromLink(href string) string {
	if i := strings.Index(href, "10."); i >= 0 {
		return href[i:]
	}
	return ""
}
