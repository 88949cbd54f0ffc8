package browse

import (
	"sort"
	"strings"

	"vademecum/internal"
	"vademecum/internal/util"
)

// BuildArticleIndex lists the quick-jump targets of a group's sections: one entry per
// distinct article key, first occurrence wins, sorted by CompareArticleKeys.
func BuildArticleIndex(sections []internal.ChapterSection) []internal.ArticleIndexEntry {
	seen := map[string]struct{}{}
	out := make([]internal.ArticleIndexEntry, 0)
	for _, section := range sections {
		for _, item := range section.Items {
			key := strings.TrimSpace(item.ArticleNumber)
			if key == "" {
				key = item.OrderLabel
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, internal.ArticleIndexEntry{
				Key:           key,
				ArticleID:     item.ArticleID,
				ArticleNumber: item.ArticleNumber,
				OrderLabel:    item.OrderLabel,
			})
		}
	}

	coll := util.NewCollator()
	sort.SliceStable(out, func(i, j int) bool {
		return compareEntries(coll, out[i], out[j]) < 0
	})
	return out
}

// CompareArticleKeys orders entries numerically by the number their label starts with;
// labels without a leading number go last. Ties fall back to collated key order.
func CompareArticleKeys(a, b internal.ArticleIndexEntry) int {
	return compareEntries(nil, a, b)
}

func compareEntries(coll *util.Collator, a, b internal.ArticleIndexEntry) int {
	av, aok := util.ParseLeadingNumber(sortLabel(a))
	bv, bok := util.ParseLeadingNumber(sortLabel(b))
	switch {
	case aok && bok && av != bv:
		if av < bv {
			return -1
		}
		return 1
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	}
	if coll == nil {
		return util.CompareLocale(a.Key, b.Key)
	}
	return coll.Compare(a.Key, b.Key)
}

func sortLabel(e internal.ArticleIndexEntry) string {
	if strings.TrimSpace(e.ArticleNumber) != "" {
		return e.ArticleNumber
	}
	return e.OrderLabel
}
