package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func product(id int, name, category, price string, rating float64, description string) Product {
	return Product{
		ID:          id,
		Name:        name,
		Category:    category,
		Price:       decimal.RequireFromString(price),
		Rating:      rating,
		Description: description,
	}
}

func ids(products []Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func testProducts() []Product {
	return []Product{
		product(1, "Merino Crew", "Crew Neck", "40", 4.5, "Fine merino wool"),
		product(2, "Cotton V-Neck", "V-Neck", "10", 4.9, "Light cotton layer"),
		product(3, "Aran Crew", "Crew Neck", "25", 4.5, "Heavy Irish wool"),
		product(4, "Shawl Cardigan", "Cardigan", "25", 4.7, "Alpaca blend with toggles"),
	}
}

func TestFilterAndSortPriceLow(t *testing.T) {
	products := []Product{
		product(1, "A", "Crew Neck", "40", 4, ""),
		product(2, "B", "Crew Neck", "10", 4, ""),
		product(3, "C", "Crew Neck", "25", 4, ""),
	}

	got := FilterAndSort(products, AllCategories, "", SortPriceLow)

	var prices []string
	for _, p := range got {
		prices = append(prices, p.Price.String())
	}
	assert.Equal(t, []string{"10", "25", "40"}, prices)
}

func TestFilterAndSortOrdering(t *testing.T) {
	tests := []struct {
		name string
		sort SortKey
		want []int
	}{
		{name: "default keeps catalog order", sort: SortDefault, want: []int{1, 2, 3, 4}},
		{name: "unknown key keeps catalog order", sort: SortKey("popularity"), want: []int{1, 2, 3, 4}},
		{name: "price low is stable on ties", sort: SortPriceLow, want: []int{2, 3, 4, 1}},
		{name: "price high is stable on ties", sort: SortPriceHigh, want: []int{1, 3, 4, 2}},
		{name: "rating descending is stable on ties", sort: SortRating, want: []int{2, 4, 1, 3}},
		{name: "name ascending", sort: SortName, want: []int{3, 2, 1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterAndSort(testProducts(), AllCategories, "", tt.sort))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterAndSortFiltering(t *testing.T) {
	tests := []struct {
		name     string
		category string
		search   string
		want     []int
	}{
		{name: "all categories", category: AllCategories, want: []int{1, 2, 3, 4}},
		{name: "empty category means all", category: "", want: []int{1, 2, 3, 4}},
		{name: "exact category", category: "Crew Neck", want: []int{1, 3}},
		{name: "category is case sensitive", category: "crew neck", want: []int{}},
		{name: "search name case insensitive", search: "MERINO", want: []int{1}},
		{name: "search description", search: "wool", want: []int{1, 3}},
		{name: "search category", search: "cardigan", want: []int{4}},
		{name: "category and search combine", category: "Crew Neck", search: "irish", want: []int{3}},
		{name: "no matches", search: "cashmere", want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterAndSort(testProducts(), tt.category, tt.search, SortDefault))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	products := testProducts()
	before := ids(products)

	got := FilterAndSort(products, AllCategories, "", SortPriceHigh)
	assert.Equal(t, before, ids(products))

	got[0].Name = "changed"
	assert.NotEqual(t, "changed", products[0].Name)
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceLow, ParseSortKey("price-low"))
	assert.Equal(t, SortName, ParseSortKey("name"))
	assert.Equal(t, SortDefault, ParseSortKey("bogus"))
	assert.Equal(t, SortDefault, ParseSortKey(""))
}

func TestSortKeyNextAndLabel(t *testing.T) {
	assert.Equal(t, SortPriceLow, SortDefault.Next())
	assert.Equal(t, SortDefault, SortName.Next())
	assert.Equal(t, "Highest Rated", SortRating.Label())
	assert.Equal(t, "Featured", SortKey("bogus").Label())
}

func TestNextCategory(t *testing.T) {
	categories := []string{"Crew Neck", "Cardigan"}

	assert.Equal(t, "Crew Neck", NextCategory(categories, AllCategories, 1))
	assert.Equal(t, "Cardigan", NextCategory(categories, "Crew Neck", 1))
	assert.Equal(t, AllCategories, NextCategory(categories, "Cardigan", 1))
	assert.Equal(t, "Cardigan", NextCategory(categories, AllCategories, -1))
	assert.Equal(t, "Crew Neck", NextCategory(categories, "unknown", 1))
}
