// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import "bytes"

// pdfSignature is the magic number every PDF file starts with.
var pdfSignature = []byte("%PDF-")

// IsValidDocument reports whether b starts with the PDF signature. It is a
// structural check only and does not parse the document.
func IsValidDocument(b []byte) bool {
	return len(b) >= len(pdfSignature) && bytes.Equal(b[:len(pdfSignature)], pdfSignature)
}
