package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Outdoor Gear", "outdoor-gear"},
		{"  Tents & Shelters  ", "tents-shelters"},
		{"Coats", "coats"},
		{"A--B", "a-b"},
		{"Size 10", "size-10"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}
