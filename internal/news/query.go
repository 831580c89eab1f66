package news

// BuildQuery returns the search query for a category, language and region:
// the category keyword for that language, followed by the region name when a
// region is set. Unknown categories fall back to the general keyword.
func BuildQuery(c Category, lang Language, region string) string {
	info, ok := Lookup(c)
	if !ok {
		info, _ = Lookup(General)
	}
	keyword := info.Keyword(lang)
	if region == "" {
		return keyword
	}
	return keyword + " " + region
}
