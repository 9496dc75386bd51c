package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParseFiltersDefaultsToLiveProducts(t *testing.T) {
	f := parseFilters(filterContext(t, "/products"))

	require.NotNil(t, f.IsDeleted)
	assert.False(t, *f.IsDeleted)

	assert.Nil(t, f.IsActive)
	assert.Nil(t, f.IsAvailable)
	assert.Nil(t, f.IsPublished)
	assert.Nil(t, f.IsMarketed)
	assert.Nil(t, f.VerificationStatus)
}

func TestParseFiltersExplicitDeletedListing(t *testing.T) {
	f := parseFilters(filterContext(t, "/products?is_deleted=true"))

	require.NotNil(t, f.IsDeleted)
	assert.True(t, *f.IsDeleted)
}
