package transfer

import (
	"regexp"
	"strconv"
	"strings"

	"vademecum/internal"
	"vademecum/internal/util"
)

var (
	reHeading = regexp.MustCompile(`^(parte|livro|titulo|subtitulo|capitulo|secao|subsecao)\s+([ivxlcdm]+|unic[oa]|geral|especial|complementar|preliminar|\d+)\b\s*[-–.:]?\s*(.*)$`)
	reArticle = regexp.MustCompile(`^Art(?:igo)?\.?\s*(\d{1,3}(?:\.\d{3})+|\d+)\s*([º°o](?:\s|$|\.))?\s*(-[A-Z]\b)?\s*[-–.]?\s*(.*)$`)
)

// headingNames indexes headingRank back to the folded heading word.
var headingNames = [7]string{"parte", "livro", "titulo", "subtitulo", "capitulo", "secao", "subsecao"}

// headingRank orders the hierarchy; a heading clears every deeper level.
var headingRank = map[string]int{
	"parte":     0,
	"livro":     1,
	"titulo":    2,
	"subtitulo": 3,
	"capitulo":  4,
	"secao":     5,
	"subsecao":  6,
}

type textParser struct {
	meta    ImportMeta
	levels  [7]internal.Level
	pending int // rank waiting for its long label, -1 when none
	current *internal.CodeArticleRecord
	body    []string
	out     []internal.CodeArticleRecord
}

// ParseCodeText splits the official text of a code into article records. Heading lines
// (PARTE, LIVRO, TÍTULO, CAPÍTULO, SEÇÃO, SUBSEÇÃO) set the hierarchy, the next plain line
// names the heading, "Art. N" opens an article and every other line extends its text.
func ParseCodeText(text string, meta ImportMeta) []internal.CodeArticleRecord {
	p := &textParser{meta: meta, pending: -1}
	for _, line := range splitLines(text) {
		p.feed(line)
	}
	p.flush()
	if p.out == nil {
		return []internal.CodeArticleRecord{}
	}
	return p.out
}

func (p *textParser) feed(line string) {
	folded := util.FoldText(line)
	if m := reHeading.FindStringSubmatch(folded); m != nil && isHeadingLine(line) {
		p.flush()
		rank := headingRank[m[1]]
		for i := rank; i < len(p.levels); i++ {
			p.levels[i] = internal.Level{}
		}
		words := strings.Fields(line)
		label := strings.Trim(words[1], ".-–:")
		p.levels[rank] = internal.Level{ID: p.headingID(rank, label), Label: label}
		if rest := restAfterLabel(line); rest != "" {
			p.levels[rank].LongLabel = rest
			p.pending = -1
		} else {
			p.pending = rank
		}
		return
	}

	if m := reArticle.FindStringSubmatch(line); m != nil {
		p.flush()
		num := m[1] + strings.TrimSpace(m[3])
		p.current = &internal.CodeArticleRecord{NumArtigo: num}
		p.pending = -1
		if rest := strings.TrimSpace(m[4]); rest != "" {
			p.body = append(p.body, rest)
		}
		return
	}

	if p.pending >= 0 {
		p.levels[p.pending].LongLabel = line
		p.pending = -1
		return
	}
	if p.current != nil {
		p.body = append(p.body, line)
	}
}

// headingID is the heading's path below its open ancestors, e.g.
// "livro-i/titulo-ii/capitulo-unico", so equal headings under different parents differ.
func (p *textParser) headingID(rank int, label string) string {
	id := headingNames[rank] + "-" + util.FoldText(label)
	for i := rank - 1; i >= 0; i-- {
		if p.levels[i].ID != "" {
			return p.levels[i].ID + "/" + id
		}
	}
	return id
}

func (p *textParser) flush() {
	if p.current == nil {
		return
	}
	pos := len(p.out)
	rec := *p.current
	rec.ID = strconv.Itoa(pos)
	rec.Position = pos
	rec.Ordem = strconv.Itoa(pos + 1)
	rec.Tipo = strings.TrimSpace(p.meta.Tipo)
	rec.NomeCodigo = strings.TrimSpace(p.meta.NomeCodigo)
	rec.Cabecalho = strings.TrimSpace(p.meta.Cabecalho)
	rec.Normativo = strings.Join(p.body, "\n")
	rec.Hierarchy = internal.Hierarchy{
		Parte:     p.levels[0],
		Livro:     p.levels[1],
		Titulo:    p.levels[2],
		Subtitulo: p.levels[3],
		Capitulo:  p.levels[4],
		Secao:     p.levels[5],
		Subsecao:  p.levels[6],
	}
	p.out = append(p.out, rec)
	p.current = nil
	p.body = nil
}

// isHeadingLine keeps prose such as "Livro de registro ..." from opening a level:
// headings are upper case, except Seção/Subseção which official texts title-case.
func isHeadingLine(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 {
		return false
	}
	first := words[0]
	if first == strings.ToUpper(first) {
		return true
	}
	f := util.FoldText(first)
	return f == "secao" || f == "subsecao"
}

// restAfterLabel returns "Da Personalidade" for "CAPÍTULO I - Da Personalidade".
func restAfterLabel(line string) string {
	words := strings.Fields(line)
	if len(words) <= 2 {
		return ""
	}
	rest := strings.Join(words[2:], " ")
	return strings.TrimSpace(strings.TrimLeft(rest, "-–.: "))
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = normalizeSpaces(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeSpaces(input string) string {
	return util.NormalizeSpaces(strings.ReplaceAll(input, "\u00a0", " "))
}
