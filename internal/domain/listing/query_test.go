package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casemandu/storefront/internal/domain/catalog"
)

func testFacets() *Facets {
	return NewFacets(
		[]catalog.Category{
			{ID: "cat-cases", Title: "Cases", Slug: "cases"},
			{ID: "cat-airpods", Title: "AirPods", Slug: "AirPods-Covers"},
		},
		[]catalog.Option{
			{ID: "opt-anime", Name: "Anime", Route: "/anime"},
			{ID: "opt-floral", Name: "Floral", Route: "floral"},
			{ID: "opt-cars", Name: "Cars", Route: "/Cars"},
		},
	)
}

func TestDecode(t *testing.T) {
	facets := testFacets()

	values, _ := url.ParseQuery("type=CASES,airpods-covers&option=anime,%2Ffloral,unknown,,anime&page=3&search=marble&sort=price-high")
	q := Decode(values, facets, true)

	assert.Equal(t, "cat-cases", q.CategoryID, "first slug wins, matched case-insensitively")
	assert.Equal(t, []string{"opt-anime", "opt-floral"}, q.OptionIDs)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, "marble", q.Search)
	assert.Equal(t, SortPriceDesc, q.Sort)
}

func TestDecodeDefaults(t *testing.T) {
	facets := testFacets()

	values, _ := url.ParseQuery("type=all&page=-2&search=ignored&sort=random")
	q := Decode(values, facets, false)

	assert.Empty(t, q.CategoryID)
	assert.Empty(t, q.OptionIDs)
	assert.Equal(t, 1, q.Page)
	assert.Empty(t, q.Search)
	assert.Equal(t, SortFeatured, q.Sort)
}

func TestEncode(t *testing.T) {
	facets := testFacets()
	q := Query{
		CategoryID: "cat-airpods",
		OptionIDs:  []string{"opt-cars", "opt-anime"},
		Page:       1,
		Search:     "blue",
		Sort:       SortFeatured,
	}

	values := Encode(q, facets, true)
	assert.Equal(t, "AirPods-Covers", values.Get("type"))
	assert.Equal(t, "Cars,anime", values.Get("option"))
	assert.Equal(t, "blue", values.Get("search"))
	_, hasPage := values["page"]
	_, hasSort := values["sort"]
	assert.False(t, hasPage)
	assert.False(t, hasSort)

	values = Encode(q.WithPage(4), facets, false)
	assert.Equal(t, "4", values.Get("page"))

	values = Encode(q.WithPage(4).WithSort(SortNewest), facets, false)
	_, hasPage = values["page"]
	assert.False(t, hasPage, "sort change resets the page")
	_, hasSearch := values["search"]
	assert.False(t, hasSearch)
	assert.Equal(t, "newest", values.Get("sort"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	facets := testFacets()
	queries := []Query{
		NewQuery(),
		{OptionIDs: []string{}, Page: 2, Sort: SortFeatured},
		{CategoryID: "cat-cases", OptionIDs: []string{"opt-floral"}, Page: 7, Sort: SortPopular},
		{CategoryID: "cat-airpods", OptionIDs: []string{"opt-cars", "opt-anime", "opt-floral"}, Page: 1, Search: "red case", Sort: SortPriceAsc},
		{OptionIDs: []string{"opt-anime"}, Page: 12, Search: "a,b&c", Sort: SortPriceDesc},
	}

	for _, q := range queries {
		encoded := Encode(q, facets, true).Encode()
		values, err := url.ParseQuery(encoded)
		assert.NoError(t, err)

		decoded := Decode(values, facets, true)
		assert.True(t, q.Equal(decoded), "round trip of %+v via %q gave %+v", q, encoded, decoded)
	}
}

func TestQueryEqualTreatsOptionsAsSet(t *testing.T) {
	a := Query{OptionIDs: []string{"x", "y"}, Page: 1, Sort: SortFeatured}
	b := Query{OptionIDs: []string{"y", "x"}, Page: 1, Sort: SortFeatured}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(b.WithPage(2)))
	assert.True(t, a.FilterEqual(b.WithPage(2)))
}

func TestToggleCategory(t *testing.T) {
	q := NewQuery().WithPage(3)

	q = q.ToggleCategory("cat-cases")
	assert.Equal(t, "cat-cases", q.CategoryID)
	assert.Equal(t, 1, q.Page)

	q = q.ToggleCategory("cat-airpods")
	assert.Equal(t, "cat-airpods", q.CategoryID, "a second category replaces the first")

	q = q.ToggleCategory("cat-airpods")
	assert.Empty(t, q.CategoryID)
}

func TestToggleOption(t *testing.T) {
	q := NewQuery().WithPage(5)

	q = q.ToggleOption("a").ToggleOption("b")
	assert.Equal(t, []string{"a", "b"}, q.OptionIDs)
	assert.Equal(t, 1, q.Page)

	original := q
	q = q.ToggleOption("a")
	assert.Equal(t, []string{"b"}, q.OptionIDs)
	assert.Equal(t, []string{"a", "b"}, original.OptionIDs, "toggle does not alias")
}

func TestUnchangedSortOrSearchKeepsPage(t *testing.T) {
	q := NewQuery().WithSearch("case").WithPage(4)
	assert.Equal(t, 4, q.WithSort(SortFeatured).Page)
	assert.Equal(t, 4, q.WithSearch(" case ").Page)
	assert.Equal(t, 1, q.WithSearch("cover").Page)
}

func TestBackendParams(t *testing.T) {
	q := Query{CategoryID: "cat-cases", OptionIDs: []string{"o1", "o2"}, Page: 2, Search: "red", Sort: SortFeatured}
	params := q.BackendParams(30)

	assert.Equal(t, catalog.ListParams{
		Page:       2,
		Limit:      30,
		Search:     "red",
		Categories: "cat-cases",
		Options:    "o1,o2",
		Sort:       "",
	}, params)

	assert.Equal(t, "price-asc", q.WithSort(ParseSort("price-low")).BackendParams(30).Sort)
}

func TestPagination(t *testing.T) {
	assert.Equal(t, 3, EffectivePages(3, 0, 30))
	assert.Equal(t, 1, EffectivePages(0, 0, 30), "no results is still one page")
	assert.Equal(t, 3, EffectivePages(0, 61, 30))
	assert.Equal(t, 2, EffectivePages(0, 60, 30))
	assert.Equal(t, 1, EffectivePages(0, 10, 0))

	assert.Equal(t, 3, ClampPage(9, 3))
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
}
