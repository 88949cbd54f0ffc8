package records

// field names the canonical attribute a lookup chain resolves.
type field int

const (
	fieldID field = iota
	fieldTipo
	fieldNomeCodigo
	fieldCabecalho
	fieldNumArtigo
	fieldNormativo
	fieldOrdem
	fieldUpdatedAt
	fieldCreatedAt
)

// fieldAliases lists backend keys in priority order. Keys are tried verbatim first,
// then folded (see foldKey), so camelCase and snake_case spellings collapse.
var fieldAliases = map[field][]string{
	fieldID:         {"id", "uuid", "_id", "codigo_id"},
	fieldTipo:       {"tipo", "tipo_codigo", "tipoCodigo", "categoria", "type"},
	fieldNomeCodigo: {"nomecodigo", "nomeCodigo", "nome_codigo", "codigo", "nome"},
	fieldCabecalho:  {"cabecalho", "cabeçalho", "header", "descricao", "descricao_codigo"},
	fieldNumArtigo:  {"num_artigo", "numArtigo", "numero_artigo", "artigo", "art", "numero"},
	fieldNormativo:  {"normativo", "texto", "conteudo", "texto_artigo", "text"},
	fieldOrdem:      {"ordem", "order", "ordem_exibicao", "posicao", "sequencia"},
	fieldUpdatedAt:  {"updated_at", "updatedAt", "atualizado_em", "created_at"},
	fieldCreatedAt:  {"created_at", "createdAt", "criado_em"},
}

// levelAliases describes where the three parts of a hierarchy level may live.
// {level} is replaced by the level name (livro, titulo, ...).
type levelAliases struct {
	ID        []string
	Label     []string
	LongLabel []string
}

var levelKeyTemplates = levelAliases{
	ID:        []string{"{level}_id", "{level}Id", "id_{level}"},
	Label:     []string{"{level}", "{level}_label", "{level}Label", "num_{level}", "{level}_numero"},
	LongLabel: []string{"{level}_texto", "{level}Texto", "{level}_descricao", "{level}Descricao", "texto_{level}", "{level}_nome"},
}

// nested level objects, e.g. {"livro": {"id": "1", "numero": "I", "texto": "Das Pessoas"}}
var nestedLevelKeys = levelAliases{
	ID:        []string{"id", "uuid"},
	Label:     []string{"label", "numero", "num", "codigo", "rotulo"},
	LongLabel: []string{"longLabel", "texto", "descricao", "nome", "titulo"},
}

var levelNames = []string{"parte", "livro", "titulo", "subtitulo", "capitulo", "secao", "subsecao"}

// recordIdentityFields mark an object as a record even when it also holds an envelope key.
var recordIdentityFields = []field{fieldID, fieldNomeCodigo, fieldNumArtigo, fieldNormativo}

// envelopeKeys wrap the record list in API responses.
var envelopeKeys = []string{"items", "data", "results", "rows"}

const maxEnvelopeDepth = 4
