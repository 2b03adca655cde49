// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/paper-ingest/internal/httputil"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// DefaultOpenAlexEndpoint is the OpenAlex works endpoint.
const DefaultOpenAlexEndpoint = "https://api.openalex.org/works/"

// openAlexResponse captures the fields we need from an OpenAlex work record.
type openAlexResponse struct {
	BestOALocation *openAlexLocation `json:"best_oa_location"`
}

type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}

// OpenAlex locates open-access PDFs for DOIs.
type OpenAlex struct {
	Client   *http.Client
	Endpoint string
	Config   types.ResolverConfig
}

// NewOpenAlex returns an OpenAlex locator using the public endpoint.
func NewOpenAlex(client *http.Client, cfg types.ResolverConfig) *OpenAlex {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenAlex{Client: client, Endpoint: DefaultOpenAlexEndpoint, Config: cfg}
}

// LocatePDF returns the best open-access PDF URL for doi. It returns "" with
// a nil error when the work has no open-access PDF.
func (o *OpenAlex) LocatePDF(ctx context.Context, doi string) (string, error) {
	apiURL := o.Endpoint + "https://doi.org/" + doi
	if o.Config.OpenAlexEmail != "" {
		apiURL += "?mailto=" + url.QueryEscape(o.Config.OpenAlexEmail)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating OpenAlex request: %w", err)
	}
	req.Header.Set("User-Agent", o.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, o.Client, req, o.Config.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oa openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oa); err != nil {
		return "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	if oa.BestOALocation == nil {
		return "", nil
	}
	return oa.BestOALocation.PDFURL, nil
}
