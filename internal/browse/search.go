package browse

import (
	"vademecum/internal"
	"vademecum/internal/util"
)

// FilterArticleIndex keeps entries whose article number (or order label when the number
// is blank) contains query, ignoring case and accents. A blank query returns entries as is.
func FilterArticleIndex(entries []internal.ArticleIndexEntry, query string) []internal.ArticleIndexEntry {
	q := util.FoldText(query)
	if q == "" {
		return entries
	}
	out := make([]internal.ArticleIndexEntry, 0, len(entries))
	for _, e := range entries {
		if util.ContainsFolded(sortLabel(e), q) {
			out = append(out, e)
		}
	}
	return out
}

// FilterGroups keeps groups whose label or description contains query after folding.
func FilterGroups(groups []internal.CodeGroup, query string) []internal.CodeGroup {
	q := util.FoldText(query)
	if q == "" {
		return groups
	}
	out := make([]internal.CodeGroup, 0, len(groups))
	for _, g := range groups {
		if util.ContainsFolded(g.Label+" "+g.Description, q) {
			out = append(out, g)
		}
	}
	return out
}

// FilterSections keeps items whose article number or visible normativo text contains
// query. Sections left without items are dropped.
func FilterSections(sections []internal.ChapterSection, query string) []internal.ChapterSection {
	q := util.FoldText(query)
	if q == "" {
		return sections
	}
	out := make([]internal.ChapterSection, 0, len(sections))
	for _, s := range sections {
		kept := make([]internal.SectionItem, 0, len(s.Items))
		for _, item := range s.Items {
			if util.ContainsFolded(item.ArticleNumber+" "+util.StripHTML(item.Normativo), q) {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			continue
		}
		s.Items = kept
		out = append(out, s)
	}
	return out
}
