package transfer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"vademecum/internal"
	"vademecum/internal/records"
)

var ErrUnsupportedType = errors.New("unsupported import type")

// ImportMeta fills the code-level fields that plain text sources do not carry.
type ImportMeta struct {
	NomeCodigo string
	Tipo       string
	Cabecalho  string
}

func Import(kind string, content []byte, meta ImportMeta) ([]internal.CodeArticleRecord, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case TypeJSON:
		return records.NormalizePayload(content)
	case TypeXLSX:
		return ImportXLSX(content)
	case TypePDF:
		return ImportPDF(content, meta)
	case TypeHTML:
		return ImportHTML(content, meta)
	case TypeText, "txt":
		return ParseCodeText(string(content), meta), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, kind)
	}
}

// ImportXLSX reads the "Artigos" sheet (or the first sheet): the first non-empty row is
// the header row, each further row becomes one raw record for the normalizer.
func ImportXLSX(content []byte) ([]internal.CodeArticleRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if idx, err := f.GetSheetIndex(articlesSheet); err == nil && idx >= 0 {
		sheet = articlesSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	var headers []string
	raw := make([]any, 0, len(rows))
	for _, row := range rows {
		cells := normalizeCells(row)
		if len(cells) == 0 {
			continue
		}
		if headers == nil {
			headers = cells
			continue
		}
		entry := make(map[string]any, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(row) {
				continue
			}
			entry[h] = row[i]
		}
		raw = append(raw, entry)
	}
	return records.Normalize(raw), nil
}

// ImportPDF extracts the plain text of every page and parses it as official code text.
func ImportPDF(content []byte, meta ImportMeta) ([]internal.CodeArticleRecord, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return ParseCodeText(text.String(), meta), nil
}

// ImportHTML reads a published code page: every paragraph-like block is one line.
func ImportHTML(content []byte, meta ImportMeta) ([]internal.CodeArticleRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, head").Remove()

	lines := make([]string, 0)
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, td").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li, td").Length() > 0 {
			return
		}
		if line := normalizeSpaces(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		lines = splitLines(doc.Text())
	}
	return ParseCodeText(strings.Join(lines, "\n"), meta), nil
}

func normalizeCells(row []string) []string {
	out := make([]string, len(row))
	nonEmpty := false
	for i, cell := range row {
		out[i] = normalizeSpaces(cell)
		if out[i] != "" {
			nonEmpty = true
		}
	}
	if !nonEmpty {
		return nil
	}
	return out
}
