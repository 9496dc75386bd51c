package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSearchOnly(t *testing.T) {
	ptr := func(b bool) *bool { return &b }
	price := decimal.NewFromInt(10)

	cases := []struct {
		name string
		c    PaginateCriteria
		want bool
	}{
		{"bare search term", PaginateCriteria{Search: "coat"}, true},
		{"default live-only exclusion", PaginateCriteria{
			Search:  "coat",
			Filters: Filters{IsDeleted: ptr(false)},
		}, true},
		{"deleted listing", PaginateCriteria{
			Search:  "coat",
			Filters: Filters{IsDeleted: ptr(true)},
		}, false},
		{"min price", PaginateCriteria{Search: "coat", MinPrice: &price}, false},
		{"max price", PaginateCriteria{Search: "coat", MaxPrice: &price}, false},
		{"category", PaginateCriteria{Search: "coat", CategoryID: "c1"}, false},
		{"subcategory", PaginateCriteria{Search: "coat", SubcategoryID: "s1"}, false},
		{"product type", PaginateCriteria{Search: "coat", ProductTypeID: "t1"}, false},
		{"published flag", PaginateCriteria{
			Search:  "coat",
			Filters: Filters{IsPublished: ptr(true)},
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.c.SearchOnly())
		})
	}
}
