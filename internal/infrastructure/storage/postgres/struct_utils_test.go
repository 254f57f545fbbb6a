package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"velora/internal/core/entity"
	"velora/internal/core/id"
)

type mockCatalog struct {
	entity.BaseCatalog
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Internal string `db:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	for _, expected := range []string{"id", "deletion_mark", "version", "code", "name"} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Internal")
	assert.NotContains(t, cols, "NoTag")
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
		},
		Code:     "PR0001",
		Name:     "Shampoo 500ml",
		Internal: "hidden",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "PR0001", m["code"])
	assert.Equal(t, "Shampoo 500ml", m["name"])
	assert.NotContains(t, m, "Internal")
}

func TestStructToMap_PointerInput(t *testing.T) {
	cat := &mockCatalog{Code: "SUP0001", Name: "CosmoTrade"}
	m := StructToMap(cat)
	assert.Equal(t, "SUP0001", m["code"])
}
