// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		wantKind Kind
		wantID   string
		wantURL  string
		wantPath string
	}{
		{"https://arxiv.org/abs/1234.5678v2", KindArxiv, "1234.5678v2", "https://arxiv.org/abs/1234.5678v2", ""},
		{"https://arxiv.org/pdf/2301.07041", KindArxiv, "2301.07041", "https://arxiv.org/pdf/2301.07041", ""},
		{"arXiv:2301.07041v3", KindArxiv, "2301.07041v3", "", ""},
		{"2301.07041", KindArxiv, "2301.07041", "", ""},
		{"10.1000/xyz123", KindDOI, "10.1000/xyz123", "", ""},
		{"doi:10.1145/1234567.1234568", KindDOI, "10.1145/1234567.1234568", "", ""},
		{"https://doi.org/10.1038/nature14539", KindDOI, "10.1038/nature14539", "https://doi.org/10.1038/nature14539", ""},
		{"https://dx.doi.org/10.1000/abc", KindDOI, "10.1000/abc", "https://dx.doi.org/10.1000/abc", ""},
		{"doi.org/10.1000/abc", KindDOI, "10.1000/abc", "", ""},
		{"https://www.doi.org/10.1000/x", KindDOI, "10.1000/x", "https://www.doi.org/10.1000/x", ""},
		{"http://WWW.DOI.ORG/10.1000/x", KindDOI, "10.1000/x", "http://WWW.DOI.ORG/10.1000/x", ""},
		{"https://example.com/papers/paper.pdf", KindURL, "", "https://example.com/papers/paper.pdf", ""},
		{"/tmp/x/paper.pdf", KindLocal, "", "", "/tmp/x/paper.pdf"},
		{"paper.pdf", KindLocal, "", "", "paper.pdf"},
		{"  ", KindUnknown, "", "", ""},
		{"", KindUnknown, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Classify(tt.input)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", got.ID, tt.wantID)
			}
			if got.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", got.URL, tt.wantURL)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, tt.wantPath)
			}
		})
	}
}

func TestFetchURL(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want string
	}{
		{"arxiv", Reference{Kind: KindArxiv, ID: "2301.07041v2"}, "https://arxiv.org/pdf/2301.07041v2"},
		{"arxiv abs page", Classify("https://arxiv.org/abs/2301.07041"), "https://arxiv.org/pdf/2301.07041"},
		{"doi", Reference{Kind: KindDOI, ID: "10.1000/xyz123"}, "https://doi.org/10.1000/xyz123"},
		{"url", Reference{Kind: KindURL, URL: "https://example.com/a.pdf"}, "https://example.com/a.pdf"},
		{"local", Reference{Kind: KindLocal, Path: "a.pdf"}, ""},
		{"unknown", Reference{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FetchURL(tt.ref); got != tt.want {
				t.Errorf("FetchURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://example.com/papers/Deep%20Learning.pdf", "Deep Learning"},
		{"https://example.com/", "example.com"},
		{"/tmp/x/My Paper.pdf", "My Paper"},
		{"2301.07041", "2301.07041"},
		{"10.1000/xyz123", "10.1000/xyz123"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Filename(Classify(tt.input)); got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDOIFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://dl.acm.org/doi/pdf/10.1145/3292500.3330701", "10.1145/3292500.3330701"},
		{"https://link.springer.com/content/pdf/10.1007/s10994-021-05946-3.pdf", "10.1007/s10994-021-05946-3"},
		{"https://example.com/10.1000/abc?download=1", "10.1000/abc"},
		{"https://example.com/paper.pdf", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := DOIFromURL(tt.url); got != tt.want {
				t.Errorf("DOIFromURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
