package news

// Filter is the combination of language, category and region that
// determines the current query. It is a value type; the With* methods
// return a modified copy.
type Filter struct {
	Language Language `json:"language"`
	Category Category `json:"category"`
	Region   string   `json:"region"`
}

// DefaultFilter is the filter a fresh session starts with.
func DefaultFilter() Filter {
	return Filter{Language: Hindi, Category: General}
}

// WithLanguage returns f with the language replaced. Unsupported languages
// leave f unchanged.
func (f Filter) WithLanguage(l Language) Filter {
	if l.Valid() {
		f.Language = l
	}
	return f
}

// ToggleLanguage switches between English and Hindi.
func (f Filter) ToggleLanguage() Filter {
	if f.Language == English {
		f.Language = Hindi
	} else {
		f.Language = English
	}
	return f
}

// WithCategory returns f with the category replaced. An unknown or empty
// category leaves f unchanged so that a category is always selected.
func (f Filter) WithCategory(c Category) Filter {
	if c.Valid() {
		f.Category = c
	}
	return f
}

// WithRegion returns f with the region replaced. The empty string clears the
// region; unknown names leave f unchanged.
func (f Filter) WithRegion(r string) Filter {
	if ValidRegion(r) {
		f.Region = r
	}
	return f
}

// Normalize replaces invalid fields with defaults.
func (f Filter) Normalize() Filter {
	d := DefaultFilter()
	if !f.Language.Valid() {
		f.Language = d.Language
	}
	if !f.Category.Valid() {
		f.Category = d.Category
	}
	if !ValidRegion(f.Region) {
		f.Region = d.Region
	}
	return f
}

// Query builds the search query for f.
func (f Filter) Query() string {
	return BuildQuery(f.Category, f.Language, f.Region)
}

// Key identifies the filter in caches.
func (f Filter) Key() string {
	return string(f.Language) + "|" + string(f.Category) + "|" + f.Region
}
