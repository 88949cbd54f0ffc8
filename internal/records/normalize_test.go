package records

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vademecum/internal"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNormalizeAliases(t *testing.T) {
	body := `[{
		"uuid": "a-1",
		"tipo": "Códigos",
		"nomecodigo": "Código Civil",
		"cabecalho": "Lei nº 10.406, de 10 de janeiro de 2002",
		"livro": "I", "livro_texto": "Das Pessoas",
		"tituloId": "t1", "titulo": "I", "tituloTexto": "Das Pessoas Naturais",
		"capitulo": {"id": "c1", "numero": "I", "texto": "Da Personalidade e da Capacidade"},
		"num_artigo": "1º",
		"normativo": "Toda pessoa é capaz de direitos e deveres na ordem civil.",
		"ordem": 1,
		"updatedAt": "",
		"atualizado_em": "2024-01-02",
		"created_at": "2023-12-31"
	}]`

	recs := Normalize(decode(t, body))
	require.Len(t, recs, 1)
	r := recs[0]

	assert.Equal(t, "a-1", r.ID)
	assert.Equal(t, "Códigos", r.Tipo)
	assert.Equal(t, "Código Civil", r.NomeCodigo)
	assert.Equal(t, internal.Level{Label: "I", LongLabel: "Das Pessoas"}, r.Livro)
	assert.Equal(t, internal.Level{ID: "t1", Label: "I", LongLabel: "Das Pessoas Naturais"}, r.Titulo)
	assert.Equal(t, internal.Level{ID: "c1", Label: "I", LongLabel: "Da Personalidade e da Capacidade"}, r.Capitulo)
	assert.Equal(t, "1º", r.NumArtigo)
	assert.Equal(t, "1", r.Ordem)
	assert.Equal(t, "2024-01-02", r.UpdatedAt, "blank updatedAt must fall through to atualizado_em")
	assert.Equal(t, "2023-12-31", r.CreatedAt)
	assert.True(t, r.Secao.IsBlank())
}

func TestNormalizeCasingFallback(t *testing.T) {
	recs := Normalize(decode(t, `[{"NomeCodigo": "Código Penal", "NUM_ARTIGO": "121", "Ordem": "10"}]`))
	require.Len(t, recs, 1)
	assert.Equal(t, "Código Penal", recs[0].NomeCodigo)
	assert.Equal(t, "121", recs[0].NumArtigo)
	assert.Equal(t, "10", recs[0].Ordem)
}

func TestNormalizeUpdatedAtFallsBackToCreatedAt(t *testing.T) {
	recs := Normalize(decode(t, `{"id": 7, "created_at": "2020-05-05"}`))
	require.Len(t, recs, 1)
	assert.Equal(t, "7", recs[0].ID)
	assert.Equal(t, "2020-05-05", recs[0].UpdatedAt)
}

func TestNormalizeEnvelopesAreEquivalent(t *testing.T) {
	list := `[{"id": "1", "nomecodigo": "CF", "ordem": "1"}, {"id": "2", "nomecodigo": "CF", "ordem": "2"}]`
	bare := Normalize(decode(t, list))
	data := Normalize(decode(t, `{"data": `+list+`}`))
	items := Normalize(decode(t, `{"items": `+list+`}`))
	nested := Normalize(decode(t, `{"success": true, "data": {"items": `+list+`}}`))

	require.Len(t, bare, 2)
	if diff := cmp.Diff(bare, data); diff != "" {
		t.Fatalf("data envelope mismatch (-bare +data):\n%s", diff)
	}
	if diff := cmp.Diff(bare, items); diff != "" {
		t.Fatalf("items envelope mismatch (-bare +items):\n%s", diff)
	}
	if diff := cmp.Diff(bare, nested); diff != "" {
		t.Fatalf("nested envelope mismatch (-bare +nested):\n%s", diff)
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	inputs := []string{
		`null`, `"garbage"`, `42`, `true`, `[]`, `{}`,
		`{"data": null}`,
		`[null, 3, "x", [1, 2], {"id": {"nested": true}, "ordem": [1]}]`,
		`{"items": {"items": {"items": {"items": {"items": []}}}}}`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var recs []internal.CodeArticleRecord
			assert.NotPanics(t, func() { recs = Normalize(decode(t, in)) })
			assert.NotNil(t, recs)
			for i, r := range recs {
				assert.NotEmpty(t, r.ID)
				assert.Equal(t, i, r.Position)
			}
		})
	}
}

func TestNormalizeKeepsRecordsWithDataField(t *testing.T) {
	inputs := []string{
		`{"id": "9", "nomecodigo": "Código Civil", "data": null}`,
		`{"id": "9", "nomecodigo": "Código Civil", "data": {"publicacao": "2002-01-10"}}`,
		`{"id": "9", "nomecodigo": "Código Civil", "data": [1, 2]}`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			recs := Normalize(decode(t, in))
			require.Len(t, recs, 1)
			assert.Equal(t, "9", recs[0].ID)
			assert.Equal(t, "Código Civil", recs[0].NomeCodigo)
		})
	}

	recs := Normalize(decode(t, `{"data": {"id": "9", "nomecodigo": "Código Civil"}}`))
	require.Len(t, recs, 1)
	assert.Equal(t, "9", recs[0].ID)
}

func TestNormalizeNonObjectEntriesKeepPositionalID(t *testing.T) {
	recs := Normalize(decode(t, `[{"id": "x"}, 5, null]`))
	require.Len(t, recs, 3)

	want := []internal.CodeArticleRecord{
		{ID: "x", Position: 0},
		{ID: "1", Position: 1},
		{ID: "2", Position: 2},
	}
	if diff := cmp.Diff(want, recs, cmpopts.IgnoreFields(internal.CodeArticleRecord{}, "RawJSON")); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestNormalizePayload(t *testing.T) {
	recs, err := NormalizePayload([]byte(`{"data":[{"id":"1","ordem":12345678901234567}]}`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "12345678901234567", recs[0].Ordem)

	recs, err = NormalizePayload(nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = NormalizePayload([]byte(`{"data": [`))
	assert.Error(t, err)
}
