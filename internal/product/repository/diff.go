package repository

import "github.com/avelia/catalog-service/internal/model"

// diffByID partitions incoming against current into additions (id empty or
// unknown), updates (id known and content differs), and deletions (current
// ids absent from incoming). The three sets are disjoint and exhaustive;
// unchanged rows fall into none of them.
func diffByID[T any](current, incoming []T, id func(*T) string, equal func(*T, *T) bool) (toAdd, toUpdate []T, toDelete []string) {
	currentByID := make(map[string]*T, len(current))
	for i := range current {
		currentByID[id(&current[i])] = &current[i]
	}

	seen := make(map[string]bool, len(incoming))
	for i := range incoming {
		in := &incoming[i]
		key := id(in)
		if key == "" {
			toAdd = append(toAdd, *in)
			continue
		}
		cur, ok := currentByID[key]
		if !ok {
			toAdd = append(toAdd, *in)
			continue
		}
		seen[key] = true
		if !equal(cur, in) {
			toUpdate = append(toUpdate, *in)
		}
	}

	for i := range current {
		if key := id(&current[i]); !seen[key] {
			toDelete = append(toDelete, key)
		}
	}
	return toAdd, toUpdate, toDelete
}

func diffOptions(current, incoming []model.ProductOption) (toAdd, toUpdate []model.ProductOption, toDelete []string) {
	return diffByID(current, incoming,
		func(o *model.ProductOption) string { return o.ID },
		optionEqual,
	)
}

func diffVariants(current, incoming []model.ProductVariant) (toAdd, toUpdate []model.ProductVariant, toDelete []string) {
	return diffByID(current, incoming,
		func(v *model.ProductVariant) string { return v.ID },
		variantEqual,
	)
}

// Content equality, not just presence: identical incoming rows produce no
// update statement.
func optionEqual(a, b *model.ProductOption) bool {
	return a.Name == b.Name &&
		a.Value == b.Value &&
		strPtrEqual(a.Price, b.Price) &&
		strPtrEqual(a.CompareAtPrice, b.CompareAtPrice) &&
		strPtrEqual(a.CostPerItem, b.CostPerItem)
}

func variantEqual(a, b *model.ProductVariant) bool {
	return a.Title == b.Title &&
		strPtrEqual(a.SKU, b.SKU) &&
		a.Price == b.Price &&
		strPtrEqual(a.CompareAtPrice, b.CompareAtPrice) &&
		strPtrEqual(a.CostPerItem, b.CostPerItem) &&
		a.Quantity == b.Quantity &&
		strPtrEqual(a.ImageID, b.ImageID)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
