package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/pkg/logger"
)

type fakeRepo struct {
	items map[string]model.MediaItem
	calls [][]string
}

func (f *fakeRepo) FindByIDs(ctx context.Context, ids []string) ([]model.MediaItem, error) {
	f.calls = append(f.calls, ids)
	var out []model.MediaItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func TestResolveDeduplicatesBeforeLookup(t *testing.T) {
	repo := &fakeRepo{items: map[string]model.MediaItem{
		"m1": {ID: "m1", URL: "https://cdn/x.jpg"},
		"m2": {ID: "m2", URL: "https://cdn/y.jpg"},
	}}
	r := NewResolver(repo, nil, logger.NewNop())

	resolved, err := r.Resolve(context.Background(), []string{"m1", "m2", "m1", "", "m2"})
	require.NoError(t, err)

	require.Len(t, repo.calls, 1, "exactly one batch lookup")
	assert.ElementsMatch(t, []string{"m1", "m2"}, repo.calls[0])
	assert.Len(t, resolved, 2)
}

func TestResolveEmptyInputSkipsLookup(t *testing.T) {
	repo := &fakeRepo{}
	r := NewResolver(repo, nil, logger.NewNop())

	resolved, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Empty(t, repo.calls)
}

func TestAttachMergesAndLeavesUnresolvedNil(t *testing.T) {
	repo := &fakeRepo{items: map[string]model.MediaItem{
		"m1": {ID: "m1", URL: "https://cdn/x.jpg"},
	}}
	r := NewResolver(repo, nil, logger.NewNop())

	img := "m1"
	missing := "gone"
	products := []model.Product{
		{
			Media: []model.ProductMedia{
				{MediaID: "m1"},
				{MediaID: "gone"},
			},
			Variants: []model.ProductVariant{
				{ImageID: &img},
				{ImageID: &missing},
				{},
			},
		},
	}

	require.NoError(t, r.Attach(context.Background(), products))

	require.NotNil(t, products[0].Media[0].MediaItem)
	assert.Equal(t, "https://cdn/x.jpg", products[0].Media[0].MediaItem.URL)
	assert.Nil(t, products[0].Media[1].MediaItem)

	require.NotNil(t, products[0].Variants[0].MediaItem)
	assert.Nil(t, products[0].Variants[1].MediaItem)
	assert.Nil(t, products[0].Variants[2].MediaItem)

	require.Len(t, repo.calls, 1, "one batch per page, not per record")
}
