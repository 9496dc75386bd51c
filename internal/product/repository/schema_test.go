package repository

import (
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx/reflectx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelia/catalog-service/internal/model"
)

var (
	createTableRe = regexp.MustCompile(`^CREATE TABLE ([a-z_]+) \($`)
	columnNameRe  = regexp.MustCompile(`^[a-z_]+$`)
	bindNameRe    = regexp.MustCompile(`:([a-z_]+)`)
)

// migrationColumns parses the initial migration into table -> column set.
func migrationColumns(t *testing.T) map[string]map[string]struct{} {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)

	tables := map[string]map[string]struct{}{}
	var current map[string]struct{}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if m := createTableRe.FindStringSubmatch(line); m != nil {
			current = map[string]struct{}{}
			tables[m[1]] = current
			continue
		}
		if current == nil {
			continue
		}
		if strings.HasPrefix(line, ");") {
			current = nil
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := strings.TrimSuffix(fields[0], ",")
		if columnNameRe.MatchString(name) {
			current[name] = struct{}{}
		}
	}
	return tables
}

// Every db-tagged field must have a matching column, otherwise SELECT *
// scans fail at runtime.
func TestModelsMatchMigration(t *testing.T) {
	tables := migrationColumns(t)
	mapper := reflectx.NewMapperFunc("db", strings.ToLower)

	cases := []struct {
		table string
		model interface{}
	}{
		{"products", model.Product{}},
		{"product_options", model.ProductOption{}},
		{"product_variants", model.ProductVariant{}},
		{"product_media", model.ProductMedia{}},
		{"media_items", model.MediaItem{}},
	}
	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			cols := tables[tc.table]
			require.NotEmpty(t, cols, "table %s missing from migration", tc.table)

			tm := mapper.TypeMap(reflect.TypeOf(tc.model))
			for name, fi := range tm.Names {
				if fi.Field.Anonymous || strings.Contains(name, ".") {
					continue
				}
				assert.Contains(t, cols, name, "table %s has no column for db tag %q", tc.table, name)
			}
		})
	}
}

// Every named bind parameter in the insert statements must have a matching
// column, otherwise every Batch call fails at parse time.
func TestInsertQueriesMatchMigration(t *testing.T) {
	tables := migrationColumns(t)

	cases := []struct {
		table string
		query string
	}{
		{"products", insertProductQuery},
		{"product_options", insertOptionQuery},
		{"product_variants", insertVariantQuery},
	}
	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			cols := tables[tc.table]
			require.NotEmpty(t, cols, "table %s missing from migration", tc.table)

			matches := bindNameRe.FindAllStringSubmatch(tc.query, -1)
			require.NotEmpty(t, matches)
			for _, m := range matches {
				assert.Contains(t, cols, m[1], "table %s has no column for bind %q", tc.table, m[1])
			}
		})
	}
}
