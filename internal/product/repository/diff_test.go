package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avelia/catalog-service/internal/model"
)

func option(id, name, value string) model.ProductOption {
	return model.ProductOption{
		BaseModel: model.BaseModel{ID: id},
		Name:      name,
		Value:     value,
	}
}

func TestDiffOptionsPartition(t *testing.T) {
	current := []model.ProductOption{
		option("a", "Size", "M"),
		option("b", "Color", "Red"),
		option("c", "Material", "Wool"),
	}
	incoming := []model.ProductOption{
		option("a", "Size", "L"),       // changed
		option("b", "Color", "Red"),    // unchanged
		option("", "Pattern", "Plain"), // new, no id yet
		option("x", "Fit", "Slim"),     // new, unknown id
	}

	toAdd, toUpdate, toDelete := diffOptions(current, incoming)

	assert.Len(t, toAdd, 2)
	assert.Equal(t, "Pattern", toAdd[0].Name)
	assert.Equal(t, "Fit", toAdd[1].Name)

	assert.Len(t, toUpdate, 1)
	assert.Equal(t, "a", toUpdate[0].ID)
	assert.Equal(t, "L", toUpdate[0].Value)

	assert.Equal(t, []string{"c"}, toDelete)
}

func TestDiffOptionsDisjoint(t *testing.T) {
	current := []model.ProductOption{
		option("a", "Size", "M"),
		option("b", "Color", "Red"),
	}
	incoming := []model.ProductOption{
		option("a", "Size", "XL"),
		option("", "Pattern", "Plain"),
	}

	toAdd, toUpdate, toDelete := diffOptions(current, incoming)

	ids := map[string]int{}
	for _, o := range toAdd {
		ids[o.ID]++
	}
	for _, o := range toUpdate {
		ids[o.ID]++
	}
	for _, id := range toDelete {
		ids[id]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "id %q appears in more than one set", id)
	}
}

func TestDiffOptionsIdenticalInputIsNoop(t *testing.T) {
	current := []model.ProductOption{
		option("a", "Size", "M"),
		option("b", "Color", "Red"),
	}
	incoming := []model.ProductOption{
		option("a", "Size", "M"),
		option("b", "Color", "Red"),
	}

	toAdd, toUpdate, toDelete := diffOptions(current, incoming)

	assert.Empty(t, toAdd)
	assert.Empty(t, toUpdate)
	assert.Empty(t, toDelete)
}

func TestDiffOptionsEmptyIncomingDeletesAll(t *testing.T) {
	current := []model.ProductOption{
		option("a", "Size", "M"),
		option("b", "Color", "Red"),
	}

	toAdd, toUpdate, toDelete := diffOptions(current, nil)

	assert.Empty(t, toAdd)
	assert.Empty(t, toUpdate)
	assert.ElementsMatch(t, []string{"a", "b"}, toDelete)
}

func TestDiffVariantsContentEquality(t *testing.T) {
	sku := "SKU-1"
	img := "img-1"
	base := model.ProductVariant{
		BaseModel: model.BaseModel{ID: "v1"},
		Title:     "Small",
		SKU:       &sku,
		Price:     "10.00",
		Quantity:  5,
		ImageID:   &img,
	}

	t.Run("identical rows produce no update", func(t *testing.T) {
		_, toUpdate, _ := diffVariants([]model.ProductVariant{base}, []model.ProductVariant{base})
		assert.Empty(t, toUpdate)
	})

	t.Run("quantity change is an update", func(t *testing.T) {
		changed := base
		changed.Quantity = 7
		_, toUpdate, _ := diffVariants([]model.ProductVariant{base}, []model.ProductVariant{changed})
		assert.Len(t, toUpdate, 1)
	})

	t.Run("nil vs set pointer is an update", func(t *testing.T) {
		changed := base
		changed.ImageID = nil
		_, toUpdate, _ := diffVariants([]model.ProductVariant{base}, []model.ProductVariant{changed})
		assert.Len(t, toUpdate, 1)
	})
}
