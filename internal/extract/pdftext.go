// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadPDF parses data and returns the Info dictionary and the plain text of
// the first maxPages pages (all pages when maxPages <= 0). Pages whose text
// cannot be decoded are skipped. The PDF parser panics on some malformed
// input; that is reported as an error.
func ReadPDF(data []byte, maxPages int) (doc Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			doc, err = Document{}, fmt.Errorf("parsing PDF: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, fmt.Errorf("opening PDF: %w", err)
	}

	doc.Info = readInfo(r)
	doc.Pages = r.NumPage()

	n := doc.Pages
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	doc.Text = sb.String()
	return doc, nil
}

func readInfo(r *pdf.Reader) Info {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return Info{}
	}
	return Info{
		Title:        info.Key("Title").Text(),
		Author:       info.Key("Author").Text(),
		CreationDate: info.Key("CreationDate").Text(),
	}
}
