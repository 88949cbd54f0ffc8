package transfer

import (
	"bytes"
	"path/filepath"
	"strings"
)

const (
	TypeJSON = "json"
	TypeXLSX = "xlsx"
	TypePDF  = "pdf"
	TypeHTML = "html"
	TypeText = "text"
)

// DetectType guesses the import type from the file extension, then from the content.
func DetectType(filename string, content []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return TypeJSON
	case ".xlsx":
		return TypeXLSX
	case ".pdf":
		return TypePDF
	case ".html", ".htm":
		return TypeHTML
	case ".txt":
		return TypeText
	}

	head := bytes.TrimSpace(content)
	if len(head) > 512 {
		head = head[:512]
	}
	switch {
	case bytes.HasPrefix(head, []byte("%PDF")):
		return TypePDF
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		return TypeXLSX
	case bytes.HasPrefix(head, []byte("{")) || bytes.HasPrefix(head, []byte("[")):
		return TypeJSON
	}
	lower := bytes.ToLower(head)
	if bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<p")) || bytes.Contains(lower, []byte("<!doctype")) {
		return TypeHTML
	}
	return TypeText
}
