package browse

import "vademecum/internal"

// Open builds the sections and quick-jump index of one group.
func Open(group internal.CodeGroup) internal.GroupView {
	sections := Sectionize(group.Records)
	return internal.GroupView{
		Group:    group,
		Sections: sections,
		Index:    BuildArticleIndex(sections),
	}
}

// Narrow applies the article-number filter to the index and the text filter to the
// sections of a view.
func Narrow(view internal.GroupView, articleQuery, textQuery string) internal.GroupView {
	view.Index = FilterArticleIndex(view.Index, articleQuery)
	view.Sections = FilterSections(view.Sections, textQuery)
	return view
}
