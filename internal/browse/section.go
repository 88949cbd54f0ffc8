package browse

import (
	"sort"
	"strconv"
	"strings"

	"vademecum/internal"
)

// noChapterKey groups records whose hierarchy is entirely blank.
const noChapterKey = "__sem_capitulo__"

type orderedRecord struct {
	rec   internal.CodeArticleRecord
	order internal.Order
	// 1-based position inside the group, used when ordem is not numeric
	seq int
}

// SortByOrdem orders a group's records by numeric ordem. Records without a numeric ordem
// go last, keeping their input order.
func SortByOrdem(records []internal.CodeArticleRecord) []internal.CodeArticleRecord {
	sorted := sortRecords(records)
	out := make([]internal.CodeArticleRecord, 0, len(sorted))
	for _, o := range sorted {
		out = append(out, o.rec)
	}
	return out
}

func sortRecords(records []internal.CodeArticleRecord) []orderedRecord {
	out := make([]orderedRecord, 0, len(records))
	for i, rec := range records {
		out = append(out, orderedRecord{rec: rec, order: internal.ParseOrder(rec.Ordem), seq: i + 1})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].order.Less(out[j].order)
	})
	return out
}

// Sectionize sorts one group's records by ordem and splits them into runs sharing the
// same chapter identity. Section order follows document order.
func Sectionize(records []internal.CodeArticleRecord) []internal.ChapterSection {
	sections := make([]internal.ChapterSection, 0)
	var current *internal.ChapterSection

	for _, o := range sortRecords(records) {
		key := ChapterKey(o.rec)
		if current == nil || current.Key != key {
			sections = append(sections, internal.ChapterSection{
				Key:          key,
				LivroLine:    LevelLine(o.rec.Livro),
				TituloLine:   LevelLine(o.rec.Titulo),
				CapituloLine: LevelLine(o.rec.Capitulo),
			})
			current = &sections[len(sections)-1]
		}
		current.Items = append(current.Items, internal.SectionItem{
			ArticleID:     o.rec.ID,
			ArticleNumber: strings.TrimSpace(o.rec.NumArtigo),
			OrderLabel:    orderLabel(o),
			Normativo:     o.rec.Normativo,
		})
	}
	return sections
}

func orderLabel(o orderedRecord) string {
	if o.order.Valid {
		return o.order.String()
	}
	return strconv.Itoa(o.seq)
}

// ChapterKey prefers the chapter identity, then title/book, then a constant.
func ChapterKey(rec internal.CodeArticleRecord) string {
	if key := levelKey(rec.Capitulo); key != "" {
		return "cap" + keySep + key
	}
	if key := levelKey(rec.Titulo) + levelKey(rec.Livro); key != "" {
		return "tit" + keySep + levelKey(rec.Titulo) + keySep + levelKey(rec.Livro)
	}
	return noChapterKey
}

func levelKey(l internal.Level) string {
	if l.IsBlank() {
		return ""
	}
	return strings.TrimSpace(l.ID) + "|" + strings.TrimSpace(l.Label) + "|" + strings.TrimSpace(l.LongLabel)
}

// LevelLine renders "{code} - {longLabel}", whichever half exists, or "-".
func LevelLine(l internal.Level) string {
	code := strings.TrimSpace(l.Label)
	long := strings.TrimSpace(l.LongLabel)
	switch {
	case code != "" && long != "":
		return code + " - " + long
	case code != "":
		return code
	case long != "":
		return long
	default:
		return "-"
	}
}
