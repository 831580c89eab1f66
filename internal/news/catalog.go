package news

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var catalogTOML []byte

// Language is the language code sent to the news API.
type Language string

const (
	English Language = "en"
	Hindi   Language = "hi"
)

// Label returns the name of the language in that language.
func (l Language) Label() string {
	if l == Hindi {
		return "हिन्दी"
	}
	return "English"
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == English || l == Hindi
}

// ParseLanguage accepts a language code or its English name.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return English, nil
	case "hi", "hindi", "हिन्दी":
		return Hindi, nil
	default:
		return "", fmt.Errorf("unknown language %q (want en or hi)", s)
	}
}

// Category is one of the fixed news topics.
type Category string

const (
	General       Category = "general"
	Business      Category = "business"
	Sports        Category = "sports"
	Health        Category = "health"
	Technology    Category = "technology"
	Entertainment Category = "entertainment"
	Science       Category = "science"
)

// CategoryInfo describes a category: its display label, icon and the search
// keyword for each language.
type CategoryInfo struct {
	Value Category `toml:"value"`
	Label string   `toml:"label"`
	Icon  string   `toml:"icon"`
	En    string   `toml:"en"`
	Hi    string   `toml:"hi"`
}

// Keyword returns the search keyword for the given language.
func (c CategoryInfo) Keyword(lang Language) string {
	if lang == Hindi {
		return c.Hi
	}
	return c.En
}

// DisplayLabel is the text shown on the category bar. Hindi mode shows the
// Hindi keyword instead of the English label.
func (c CategoryInfo) DisplayLabel(lang Language) string {
	if lang == Hindi {
		return c.Hi
	}
	return c.Label
}

type catalog struct {
	Categories []CategoryInfo `toml:"categories"`
	Regions    struct {
		AllLabel string   `toml:"all_label"`
		Names    []string `toml:"names"`
	} `toml:"regions"`
}

var (
	categories    []CategoryInfo
	categoryIndex map[Category]int
	regions       []string
	regionSet     map[string]struct{}
	allRegions    string
)

func init() {
	var c catalog
	if err := toml.Unmarshal(catalogTOML, &c); err != nil {
		panic(fmt.Sprintf("news: parsing embedded catalog: %v", err))
	}
	if len(c.Categories) == 0 || len(c.Regions.Names) == 0 {
		panic("news: embedded catalog is empty")
	}

	categories = c.Categories
	categoryIndex = make(map[Category]int, len(categories))
	for i, info := range categories {
		categoryIndex[info.Value] = i
	}

	regions = c.Regions.Names
	regionSet = make(map[string]struct{}, len(regions))
	for _, r := range regions {
		regionSet[r] = struct{}{}
	}
	allRegions = c.Regions.AllLabel
}

// Categories returns the categories in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categories...)
}

// Lookup returns the catalog entry for c.
func Lookup(c Category) (CategoryInfo, bool) {
	i, ok := categoryIndex[c]
	if !ok {
		return CategoryInfo{}, false
	}
	return categories[i], true
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryIndex[c]
	return ok
}

// Index returns the display position of c, or -1.
func (c Category) Index() int {
	if i, ok := categoryIndex[c]; ok {
		return i
	}
	return -1
}

// ParseCategory accepts a category value or its English label.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Regions returns the region names in display order.
func Regions() []string {
	return append([]string(nil), regions...)
}

// ValidRegion reports whether r is empty (nationwide) or a known region.
func ValidRegion(r string) bool {
	if r == "" {
		return true
	}
	_, ok := regionSet[r]
	return ok
}

// ParseRegion matches a region name case-insensitively.
func ParseRegion(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, allRegions) {
		return "", nil
	}
	for _, r := range regions {
		if strings.EqualFold(r, s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// RegionLabel returns the display label for a region, using the nationwide
// label for the empty region.
func RegionLabel(r string) string {
	if r == "" {
		return allRegions
	}
	return r
}
