// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pdfInfo holds the Info dictionary entries written by buildPDF.
type pdfInfo struct {
	Title, Author, CreationDate string
}

func pdfString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}

// buildPDF writes a single-page PDF with one text line per entry in lines
// and a classic cross-reference table.
func buildPDF(t *testing.T, info pdfInfo, lines []string) []byte {
	t.Helper()

	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for i, line := range lines {
		if i > 0 {
			content.WriteString("T*\n")
		}
		content.WriteString(pdfString(line) + " Tj\n")
	}
	content.WriteString("ET")

	var infoDict strings.Builder
	infoDict.WriteString("<< ")
	if info.Title != "" {
		infoDict.WriteString("/Title " + pdfString(info.Title) + " ")
	}
	if info.Author != "" {
		infoDict.WriteString("/Author " + pdfString(info.Author) + " ")
	}
	if info.CreationDate != "" {
		infoDict.WriteString("/CreationDate " + pdfString(info.CreationDate) + " ")
	}
	infoDict.WriteString(">>")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		infoDict.String(),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 6 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestReadPDF(t *testing.T) {
	data := buildPDF(t, pdfInfo{
		Title:        "Sparse Attention Revisited",
		Author:       "Alice Smith; Bob Jones",
		CreationDate: "D:20210304120000Z",
	}, []string{"Sparse Attention Revisited", "Alice Smith and Bob Jones"})

	doc, err := ReadPDF(data, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Pages)
	assert.Equal(t, "Sparse Attention Revisited", doc.Info.Title)
	assert.Equal(t, "Alice Smith; Bob Jones", doc.Info.Author)
	assert.Equal(t, "D:20210304120000Z", doc.Info.CreationDate)
	assert.Contains(t, doc.Text, "Sparse Attention Revisited")
	assert.Contains(t, doc.Text, "Alice Smith and Bob Jones")
}

func TestReadPDFWithoutInfo(t *testing.T) {
	data := buildPDF(t, pdfInfo{}, []string{"Body only"})

	doc, err := ReadPDF(data, 0)
	require.NoError(t, err)
	assert.Equal(t, Info{}, doc.Info)
	assert.Contains(t, doc.Text, "Body only")
}

func TestReadPDFRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", []byte("%PDF-1.4\n")},
		{"truncated xref", []byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\nstartxref\n9999\n%%EOF\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := ReadPDF(tt.data, 3)
				assert.Error(t, err)
			})
		})
	}
}
