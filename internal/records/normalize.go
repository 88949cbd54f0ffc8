package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"vademecum/internal"
	"vademecum/internal/util"
)

// NormalizePayload decodes a backend response body and normalizes it.
// It fails only when body is not valid JSON; any JSON shape is accepted.
func NormalizePayload(body []byte) ([]internal.CodeArticleRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []internal.CodeArticleRecord{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode vade mecum payload: %w", err)
	}
	return Normalize(payload), nil
}

// Normalize turns any decoded JSON value into canonical records. It never fails:
// unknown shapes produce blank fields, non-object entries keep only their positional id.
func Normalize(payload any) []internal.CodeArticleRecord {
	entries := unwrap(payload, 0)
	out := make([]internal.CodeArticleRecord, 0, len(entries))
	for i, entry := range entries {
		out = append(out, normalizeEntry(entry, i))
	}
	return out
}

// unwrap finds the record list inside envelopes like {"data": {"items": [...]}}.
func unwrap(payload any, depth int) []any {
	switch v := payload.(type) {
	case []any:
		return v
	case map[string]any:
		if depth < maxEnvelopeDepth && !hasRecordKeys(v) {
			for _, key := range envelopeKeys {
				inner, ok := v[key]
				if !ok {
					continue
				}
				switch t := inner.(type) {
				case nil:
					return nil
				case []any:
					return t
				case map[string]any:
					if isEnvelope(t) {
						return unwrap(t, depth+1)
					}
					return []any{t}
				}
			}
		}
		return []any{v}
	default:
		return nil
	}
}

// hasRecordKeys reports whether m carries a record identity field, which makes a key
// like "data" (a date, in Portuguese) a plain field rather than an envelope.
func hasRecordKeys(m map[string]any) bool {
	lk := newLookup(m)
	for _, f := range recordIdentityFields {
		for _, alias := range fieldAliases[f] {
			if _, ok := lk.get(alias); ok {
				return true
			}
		}
	}
	return false
}

func isEnvelope(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, key := range envelopeKeys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func normalizeEntry(entry any, position int) internal.CodeArticleRecord {
	fallbackID := strconv.Itoa(position)
	raw, ok := entry.(map[string]any)
	if !ok {
		return internal.CodeArticleRecord{ID: fallbackID, Position: position, RawJSON: rawJSON(entry)}
	}

	lk := newLookup(raw)
	rec := internal.CodeArticleRecord{
		ID:         util.FirstNonEmpty(lk.field(fieldID), fallbackID),
		Tipo:       lk.field(fieldTipo),
		NomeCodigo: lk.field(fieldNomeCodigo),
		Cabecalho:  lk.field(fieldCabecalho),
		NumArtigo:  lk.field(fieldNumArtigo),
		Normativo:  lk.field(fieldNormativo),
		Ordem:      lk.field(fieldOrdem),
		UpdatedAt:  lk.field(fieldUpdatedAt),
		CreatedAt:  lk.field(fieldCreatedAt),
		Position:   position,
		RawJSON:    rawJSON(raw),
	}
	rec.Parte = lk.level("parte")
	rec.Livro = lk.level("livro")
	rec.Titulo = lk.level("titulo")
	rec.Subtitulo = lk.level("subtitulo")
	rec.Capitulo = lk.level("capitulo")
	rec.Secao = lk.level("secao")
	rec.Subsecao = lk.level("subsecao")
	return rec
}

// lookup resolves alias chains against one raw record.
type lookup struct {
	raw    map[string]any
	folded map[string]any
}

func newLookup(raw map[string]any) lookup {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	// first key in sorted order wins a folding collision
	sort.Strings(keys)
	folded := make(map[string]any, len(raw))
	for _, k := range keys {
		fk := foldKey(k)
		if _, exists := folded[fk]; !exists {
			folded[fk] = raw[k]
		}
	}
	return lookup{raw: raw, folded: folded}
}

func (l lookup) field(f field) string {
	return l.first(fieldAliases[f])
}

// first returns the first non-blank value of aliases, trying exact keys before folded ones.
func (l lookup) first(aliases []string) string {
	for _, alias := range aliases {
		if s := stringify(l.raw[alias]); s != "" {
			return s
		}
	}
	for _, alias := range aliases {
		if s := stringify(l.folded[foldKey(alias)]); s != "" {
			return s
		}
	}
	return ""
}

func (l lookup) get(key string) (any, bool) {
	if v, ok := l.raw[key]; ok {
		return v, true
	}
	v, ok := l.folded[foldKey(key)]
	return v, ok
}

func (l lookup) level(name string) internal.Level {
	if v, ok := l.get(name); ok {
		if nested, ok := v.(map[string]any); ok {
			inner := newLookup(nested)
			return internal.Level{
				ID:        inner.first(nestedLevelKeys.ID),
				Label:     inner.first(nestedLevelKeys.Label),
				LongLabel: inner.first(nestedLevelKeys.LongLabel),
			}
		}
	}
	return internal.Level{
		ID:        l.first(expand(levelKeyTemplates.ID, name)),
		Label:     l.first(expand(levelKeyTemplates.Label, name)),
		LongLabel: l.first(expand(levelKeyTemplates.LongLabel, name)),
	}
}

func expand(templates []string, level string) []string {
	out := make([]string, 0, len(templates))
	for _, t := range templates {
		out = append(out, strings.ReplaceAll(t, "{level}", level))
	}
	return out
}

var keySeparators = strings.NewReplacer("_", "", "-", "", " ", "")

func foldKey(key string) string {
	return keySeparators.Replace(util.FoldText(key))
}

// stringify renders scalars as text. Objects, arrays and null become "".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return t.String()
		}
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func rawJSON(v any) string {
	blob, err := util.MarshalNoEscape(v, false)
	if err != nil {
		return ""
	}
	return string(blob)
}
