package browse

import (
	"sort"
	"strings"

	"vademecum/internal"
	"vademecum/internal/util"
)

const keySep = "\x1f"

// GroupKey identifies the code a record belongs to: (tipo, nomeCodigo), or the record id
// when nomeCodigo is blank so that every record lands in exactly one group.
func GroupKey(rec internal.CodeArticleRecord) string {
	nome := strings.TrimSpace(rec.NomeCodigo)
	if nome == "" {
		return "id" + keySep + rec.ID
	}
	return strings.TrimSpace(rec.Tipo) + keySep + nome
}

// Group buckets records into codes. Members keep their input order; groups are sorted
// by label with Portuguese collation.
func Group(records []internal.CodeArticleRecord) []internal.CodeGroup {
	byKey := map[string]int{}
	groups := make([]internal.CodeGroup, 0)

	for _, rec := range records {
		key := GroupKey(rec)
		idx, ok := byKey[key]
		if !ok {
			idx = len(groups)
			byKey[key] = idx
			groups = append(groups, internal.CodeGroup{Key: key})
		}
		g := &groups[idx]
		g.Records = append(g.Records, rec)
		if g.Label == "" {
			g.Label = strings.TrimSpace(rec.NomeCodigo)
		}
		if g.Description == "" {
			g.Description = strings.TrimSpace(rec.Cabecalho)
		}
		if g.Tipo == "" {
			g.Tipo = strings.TrimSpace(rec.Tipo)
		}
	}

	for i := range groups {
		if groups[i].Label == "" {
			groups[i].Label = "Codigo " + groups[i].Records[0].ID
		}
	}

	sortGroups(groups)
	return groups
}

func sortGroups(groups []internal.CodeGroup) {
	coll := util.NewCollator()
	sort.SliceStable(groups, func(i, j int) bool {
		return coll.Compare(groups[i].Label, groups[j].Label) < 0
	})
}

// BucketByTipo splits groups by category (see Category). Buckets are sorted by name and
// each bucket's groups by label.
func BucketByTipo(groups []internal.CodeGroup) []internal.TipoBucket {
	byTipo := map[string]int{}
	buckets := make([]internal.TipoBucket, 0)
	for _, g := range groups {
		tipo := Category(g.Tipo)
		idx, ok := byTipo[tipo]
		if !ok {
			idx = len(buckets)
			byTipo[tipo] = idx
			buckets = append(buckets, internal.TipoBucket{Tipo: tipo})
		}
		buckets[idx].Groups = append(buckets[idx].Groups, g)
	}

	coll := util.NewCollator()
	for i := range buckets {
		sortGroups(buckets[i].Groups)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return coll.Compare(buckets[i].Tipo, buckets[j].Tipo) < 0
	})
	return buckets
}

// FindGroup resolves a group by key or by folded label.
func FindGroup(groups []internal.CodeGroup, ref string) (internal.CodeGroup, bool) {
	for _, g := range groups {
		if g.Key == ref {
			return g, true
		}
	}
	folded := util.FoldText(ref)
	for _, g := range groups {
		if util.FoldText(g.Label) == folded {
			return g, true
		}
	}
	return internal.CodeGroup{}, false
}
