package browse

import (
	"strings"

	"vademecum/internal/util"
)

const CategoryOther = "Outros"

type category struct {
	Name    string
	Members []string
}

// categories are matched on folded tipo values. The backend has no closed enum, so
// anything unrecognized is filed under CategoryOther.
var categories = []category{
	{Name: "Constituição", Members: []string{"constituicao", "constituicao federal", "cf", "cf/88", "constitucional"}},
	{Name: "Códigos", Members: []string{"codigo", "codigos", "cod"}},
	{Name: "Leis", Members: []string{"lei", "leis", "lei ordinaria", "leis ordinarias", "lei complementar", "leis complementares", "decreto", "decretos", "decreto-lei", "legislacao"}},
	{Name: "Jurisprudência", Members: []string{"jurisprudencia", "sumula", "sumulas", "sumulas vinculantes", "sumula vinculante", "enunciado", "enunciados"}},
	{Name: "OAB", Members: []string{"oab", "provimento", "provimentos", "regulamento geral", "codigo de etica", "codigo de etica e disciplina"}},
	{Name: "Estatutos", Members: []string{"estatuto", "estatutos"}},
}

func Category(tipo string) string {
	folded := util.FoldText(tipo)
	if folded == "" {
		return CategoryOther
	}
	for _, c := range categories {
		for _, m := range c.Members {
			if folded == m {
				return c.Name
			}
		}
	}
	// "Estatuto da OAB" and similar compound values
	for _, c := range categories {
		for _, m := range c.Members {
			if len(m) > 3 && strings.HasPrefix(folded, m+" ") {
				return c.Name
			}
		}
	}
	return CategoryOther
}
