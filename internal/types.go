package internal

import (
	"math"
	"strconv"
	"strings"
)

// Level is one step of the hierarchy path (parte, livro, titulo, ...).
type Level struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	LongLabel string `json:"longLabel"`
}

func (l Level) IsBlank() bool {
	return strings.TrimSpace(l.ID) == "" && strings.TrimSpace(l.Label) == "" && strings.TrimSpace(l.LongLabel) == ""
}

type Hierarchy struct {
	Parte     Level `json:"parte"`
	Livro     Level `json:"livro"`
	Titulo    Level `json:"titulo"`
	Subtitulo Level `json:"subtitulo"`
	Capitulo  Level `json:"capitulo"`
	Secao     Level `json:"secao"`
	Subsecao  Level `json:"subsecao"`
}

// Levels returns the seven levels from parte down to subsecao.
func (h Hierarchy) Levels() []Level {
	return []Level{h.Parte, h.Livro, h.Titulo, h.Subtitulo, h.Capitulo, h.Secao, h.Subsecao}
}

// CodeArticleRecord is the canonical shape of one legal provision after normalization.
// Every string field is present, possibly empty.
type CodeArticleRecord struct {
	ID         string `json:"id"`
	Tipo       string `json:"tipo"`
	NomeCodigo string `json:"nomeCodigo"`
	Cabecalho  string `json:"cabecalho"`
	Hierarchy
	NumArtigo string `json:"numArtigo"`
	Normativo string `json:"normativo"`
	Ordem     string `json:"ordem"`
	UpdatedAt string `json:"updatedAt"`
	CreatedAt string `json:"createdAt"`

	// Position is the 0-based index of the record in the payload it came from.
	Position int    `json:"-"`
	RawJSON  string `json:"-"`
}

// Order is the parsed form of the string-encoded ordem field.
// Integral orders keep their exact value in Int; Value holds the float form.
// Invalid orders sort after every valid one.
type Order struct {
	Value float64
	Int   int64
	IsInt bool
	Valid bool
}

func ParseOrder(raw string) Order {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Order{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Order{Value: float64(n), Int: n, IsInt: true, Valid: true}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Order{}
	}
	return Order{Value: v, Valid: true}
}

// Less reports whether o sorts strictly before other.
func (o Order) Less(other Order) bool {
	switch {
	case o.Valid && other.Valid:
		if o.IsInt && other.IsInt {
			return o.Int < other.Int
		}
		return o.Value < other.Value
	case o.Valid:
		return true
	default:
		return false
	}
}

func (o Order) String() string {
	switch {
	case !o.Valid:
		return ""
	case o.IsInt:
		return strconv.FormatInt(o.Int, 10)
	default:
		return strconv.FormatFloat(o.Value, 'f', -1, 64)
	}
}

// CodeGroup holds every record sharing one (tipo, nomeCodigo) pair.
type CodeGroup struct {
	Key         string              `json:"key"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
	Tipo        string              `json:"tipo"`
	Records     []CodeArticleRecord `json:"-"`
}

type TipoBucket struct {
	Tipo   string      `json:"tipo"`
	Groups []CodeGroup `json:"groups"`
}

type SectionItem struct {
	ArticleID     string `json:"articleId"`
	ArticleNumber string `json:"articleNumber"`
	OrderLabel    string `json:"orderLabel"`
	Normativo     string `json:"normativo"`
}

// ChapterSection is a maximal contiguous run of records sharing a chapter identity.
type ChapterSection struct {
	Key          string        `json:"key"`
	LivroLine    string        `json:"livroLine"`
	TituloLine   string        `json:"tituloLine"`
	CapituloLine string        `json:"capituloLine"`
	Items        []SectionItem `json:"items"`
}

type ArticleIndexEntry struct {
	Key           string `json:"key"`
	ArticleID     string `json:"articleId"`
	ArticleNumber string `json:"articleNumber"`
	OrderLabel    string `json:"orderLabel"`
}

// GroupView is everything a code screen renders for one opened group.
type GroupView struct {
	Group    CodeGroup           `json:"group"`
	Sections []ChapterSection    `json:"sections"`
	Index    []ArticleIndexEntry `json:"index"`
}

type SyncRun struct {
	TraceID string
	Kind    string
	Timings map[string]float64
	Counts  map[string]int
}
