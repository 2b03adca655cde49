// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"testing"
	"testing/quick"
)

func TestIsValidDocument(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"pdf", samplePDF, true},
		{"signature only", []byte("%PDF-"), true},
		{"truncated signature", []byte("%PDF"), false},
		{"html", []byte("<!DOCTYPE html><html></html>"), false},
		{"leading whitespace", []byte(" %PDF-1.7"), false},
		{"lowercase", []byte("%pdf-1.7"), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidDocument(tt.data); got != tt.want {
				t.Errorf("IsValidDocument(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestIsValidDocumentPrefixProperty(t *testing.T) {
	withSignature := func(tail []byte) bool {
		return IsValidDocument(append([]byte("%PDF-"), tail...))
	}
	if err := quick.Check(withSignature, nil); err != nil {
		t.Error(err)
	}

	withoutSignature := func(b []byte) bool {
		if len(b) >= 5 && string(b[:5]) == "%PDF-" {
			return true
		}
		return !IsValidDocument(b)
	}
	if err := quick.Check(withoutSignature, nil); err != nil {
		t.Error(err)
	}
}
