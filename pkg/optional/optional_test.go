package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldUnmarshalThreeStates(t *testing.T) {
	type payload struct {
		Title Field[string] `json:"title"`
	}

	t.Run("absent means do not touch", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.Title.IsSet())
		assert.False(t, p.Title.IsNull())
	})

	t.Run("null means clear", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"title": null}`), &p))
		assert.True(t, p.Title.IsSet())
		assert.True(t, p.Title.IsNull())
		assert.Nil(t, p.Title.Ptr())
	})

	t.Run("value means set", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"title": "Coat"}`), &p))
		assert.True(t, p.Title.IsSet())
		assert.False(t, p.Title.IsNull())
		v, ok := p.Title.Value()
		assert.True(t, ok)
		assert.Equal(t, "Coat", v)
		require.NotNil(t, p.Title.Ptr())
		assert.Equal(t, "Coat", *p.Title.Ptr())
	})
}

func TestFieldUnmarshalTypedValues(t *testing.T) {
	type payload struct {
		Quantity Field[int]     `json:"quantity"`
		Price    Field[float64] `json:"price"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": 3, "price": 10.5}`), &p))
	q, ok := p.Quantity.Value()
	assert.True(t, ok)
	assert.Equal(t, 3, q)
	pr, ok := p.Price.Value()
	assert.True(t, ok)
	assert.Equal(t, 10.5, pr)

	var bad payload
	assert.Error(t, json.Unmarshal([]byte(`{"quantity": "three"}`), &bad))
}

func TestFieldConstructors(t *testing.T) {
	set := Set("hello")
	assert.True(t, set.IsSet())
	assert.False(t, set.IsNull())
	v, ok := set.Value()
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	cleared := Clear[string]()
	assert.True(t, cleared.IsSet())
	assert.True(t, cleared.IsNull())

	var zero Field[string]
	assert.False(t, zero.IsSet())
}

func TestFieldMarshal(t *testing.T) {
	out, err := json.Marshal(Set(42))
	require.NoError(t, err)
	assert.Equal(t, "42", string(out))

	out, err = json.Marshal(Clear[int]())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
