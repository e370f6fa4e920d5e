package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of a product listing.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
)

var sortLabels = map[SortKey]string{
	SortDefault:   "Featured",
	SortPriceLow:  "Price: Low to High",
	SortPriceHigh: "Price: High to Low",
	SortRating:    "Highest Rated",
	SortName:      "Name: A to Z",
}

// SortKeys returns the sort keys in menu order.
func SortKeys() []SortKey {
	return []SortKey{SortDefault, SortPriceLow, SortPriceHigh, SortRating, SortName}
}

// Label returns the human readable name of the sort key.
func (k SortKey) Label() string {
	if label, ok := sortLabels[k]; ok {
		return label
	}
	return sortLabels[SortDefault]
}

// Next returns the sort key after k, wrapping around.
func (k SortKey) Next() SortKey {
	keys := SortKeys()
	for i, key := range keys {
		if key == k {
			return keys[(i+1)%len(keys)]
		}
	}
	return SortDefault
}

// ParseSortKey maps a raw value to a SortKey. Unknown values keep catalog order.
func ParseSortKey(s string) SortKey {
	k := SortKey(s)
	if _, ok := sortLabels[k]; ok {
		return k
	}
	return SortDefault
}

// FilterAndSort returns the products matching category and search text,
// ordered by sortKey. The input slice is never modified.
//
// Category matching is exact and case-sensitive; AllCategories or "" match
// everything. The search text is matched case-insensitively as a substring
// of the name, description or category. Unrecognized sort keys keep catalog
// order, and all orderings are stable.
func FilterAndSort(products []Product, category, search string, sortKey SortKey) []Product {
	term := strings.ToLower(search)

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if term != "" && !matchesSearch(p, term) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch sortKey {
	case SortPriceLow:
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortRating:
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case SortName:
		col := collate.New(language.English)
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	}

	return filtered
}

func matchesSearch(p Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}

// NextCategory cycles through AllCategories followed by categories.
// A negative step moves backwards.
func NextCategory(categories []string, current string, step int) string {
	options := append([]string{AllCategories}, categories...)
	idx := slices.Index(options, current)
	if idx < 0 {
		idx = 0
	}
	n := len(options)
	return options[((idx+step)%n+n)%n]
}
