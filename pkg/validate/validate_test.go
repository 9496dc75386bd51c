package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelia/catalog-service/pkg/apperrors"
)

type sample struct {
	Name string `validate:"required,min=2"`
	URL  string `validate:"omitempty,url"`
	Kind string `validate:"required,oneof=a b"`
}

func TestStruct(t *testing.T) {
	t.Run("valid passes", func(t *testing.T) {
		assert.NoError(t, Struct(&sample{Name: "ok", Kind: "a"}))
	})

	t.Run("every violated field is reported", func(t *testing.T) {
		err := Struct(&sample{URL: "not a url", Kind: "c"})
		require.Error(t, err)

		var ve *apperrors.ValidationError
		require.True(t, errors.As(err, &ve))

		fields := map[string]string{}
		for _, f := range ve.Fields {
			fields[f.Field] = f.Message
		}
		assert.Equal(t, "is required", fields["Name"])
		assert.Equal(t, "must be a valid URL", fields["URL"])
		assert.Equal(t, "must be one of [a b]", fields["Kind"])
	})
}

func TestAllFailsAtomically(t *testing.T) {
	items := []sample{
		{Name: "ok", Kind: "a"},
		{Kind: "a"},
		{Name: "ok", Kind: "z"},
	}

	err := All(items)
	require.Error(t, err)

	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve))

	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["[1].Name"])
	assert.True(t, fields["[2].Kind"])
	assert.False(t, fields["[0].Name"])
}

func TestAllPassesWhenAllValid(t *testing.T) {
	items := []sample{
		{Name: "one", Kind: "a"},
		{Name: "two", Kind: "b"},
	}
	assert.NoError(t, All(items))
}

func TestEmptyToNil(t *testing.T) {
	assert.Nil(t, EmptyToNil(nil))

	empty := ""
	assert.Nil(t, EmptyToNil(&empty))

	blank := "   "
	assert.Nil(t, EmptyToNil(&blank))

	value := "keep"
	got := EmptyToNil(&value)
	require.NotNil(t, got)
	assert.Equal(t, "keep", *got)
}
