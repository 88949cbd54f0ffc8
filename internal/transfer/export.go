package transfer

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vademecum/internal"
	"vademecum/internal/browse"
	"vademecum/internal/util"
)

const (
	codesSheet    = "Codigos"
	articlesSheet = "Artigos"
)

var codesHeaders = []string{"codigo", "tipo", "categoria", "descricao", "artigos"}

var levelColumns = []string{"parte", "livro", "titulo", "subtitulo", "capitulo", "secao", "subsecao"}

// articleHeaders are alias keys, so the sheet reads back through ImportXLSX.
var articleHeaders = buildArticleHeaders()

func buildArticleHeaders() []string {
	headers := []string{"id", "tipo", "nomecodigo", "cabecalho"}
	for _, level := range levelColumns {
		headers = append(headers, level+"_id", level, level+"_texto")
	}
	return append(headers, "num_artigo", "ordem", "normativo")
}

// ExportGroupsToXLSX writes one row per code to "Codigos" and one row per article, in
// ordem order, to "Artigos". Normativo is written as plain text.
func ExportGroupsToXLSX(groups []internal.CodeGroup, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), codesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(articlesSheet); err != nil {
		return err
	}

	writeRow(f, codesSheet, 1, toAny(codesHeaders))
	writeRow(f, articlesSheet, 1, toAny(articleHeaders))

	articleRow := 2
	for i, g := range groups {
		writeRow(f, codesSheet, i+2, []any{g.Label, g.Tipo, browse.Category(g.Tipo), g.Description, len(g.Records)})

		for _, rec := range browse.SortByOrdem(g.Records) {
			row := []any{rec.ID, rec.Tipo, rec.NomeCodigo, rec.Cabecalho}
			for _, l := range rec.Levels() {
				row = append(row, l.ID, l.Label, l.LongLabel)
			}
			row = append(row, rec.NumArtigo, rec.Ordem, util.StripHTML(rec.Normativo))
			writeRow(f, articlesSheet, articleRow, row)
			articleRow++
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, value)
	}
}

func toAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
