// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/internal/extract"
	"github.com/pdiddy/paper-ingest/internal/resolve"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// MergeInput holds the candidate metadata for one import.
type MergeInput struct {
	// Resolved is the catalog record, nil when no catalog answered.
	Resolved *resolve.Metadata

	// Local is the metadata extracted from the document itself.
	Local extract.Metadata

	// Filename is the title of last resort.
	Filename string

	// URL is the original input URL; a DOI in its path is the identifier of
	// last resort.
	URL string

	// FallbackSource labels the draft when no catalog contributed.
	FallbackSource types.Source
}

// Merge builds a draft field by field: catalog metadata first, then local
// extraction, then the filename (title only). A placeholder catalog record
// contributes its DOI but never its title.
func Merge(in MergeInput) types.PaperMetadataDraft {
	r := in.Resolved
	if r == nil {
		r = &resolve.Metadata{}
	}
	l := in.Local

	d := types.PaperMetadataDraft{
		Authors:    firstList(r.Authors, l.Authors),
		Venue:      r.Venue,
		Year:       firstInt(r.Year, l.Year),
		Identifier: firstString(r.DOI, l.DOI, acquire.DOIFromURL(in.URL)),
		Abstract:   firstString(r.Abstract, l.Abstract),
		Keywords:   firstList(r.Keywords, l.Keywords),
		Source:     in.FallbackSource,
	}

	if r.Placeholder {
		d.Title = firstString(l.Title, in.Filename, r.Title)
	} else {
		d.Title = firstString(r.Title, l.Title, in.Filename)
	}

	if r.Source != "" {
		d.Source = r.Source
	}
	if d.Source == "" {
		d.Source = types.SourceURL
	}
	if d.Authors == nil {
		d.Authors = []string{}
	}
	return d
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstList(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}
