package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2tools/s2ddl/internal/schema"
)

func simpleTable(name string, columns ...schema.Column) *schema.TableDefinition {
	return &schema.TableDefinition{Name: name, Columns: columns}
}

func TestCompare_NoChanges(t *testing.T) {
	old := map[string]*schema.TableDefinition{
		"users": simpleTable("users", schema.Column{Name: "id", Type: "INT"}),
	}
	new := map[string]*schema.TableDefinition{
		"users": simpleTable("users", schema.Column{Name: "id", Type: "INT"}),
	}

	result := Compare(old, new)
	assert.Empty(t, result.TableDiffs)
}

func TestCompare_AddedAndDroppedTables(t *testing.T) {
	old := map[string]*schema.TableDefinition{
		"legacy": simpleTable("legacy", schema.Column{Name: "id", Type: "INT"}),
	}
	new := map[string]*schema.TableDefinition{
		"events": simpleTable("events", schema.Column{Name: "id", Type: "INT"}),
	}

	result := Compare(old, new)
	require.Len(t, result.TableDiffs, 2)
	assert.Equal(t, ActionAdd, result.TableDiffs["events"].Action)
	assert.Equal(t, ActionDrop, result.TableDiffs["legacy"].Action)
}

func TestCompare_ColumnChanges(t *testing.T) {
	old := map[string]*schema.TableDefinition{
		"users": simpleTable("users",
			schema.Column{Name: "id", Type: "INT"},
			schema.Column{Name: "name", Type: "TEXT", Nullable: true},
			schema.Column{Name: "obsolete", Type: "INT", Nullable: true},
		),
	}
	new := map[string]*schema.TableDefinition{
		"users": simpleTable("users",
			schema.Column{Name: "id", Type: "BIGINT"},
			schema.Column{Name: "name", Type: "TEXT", Nullable: true},
			schema.Column{Name: "email", Type: "TEXT", Nullable: true},
		),
	}

	result := Compare(old, new)
	require.Len(t, result.TableDiffs, 1)
	diff := result.TableDiffs["users"]
	assert.Equal(t, ActionModify, diff.Action)
	require.Len(t, diff.ColumnChanges, 3)

	byName := map[string]ColumnChange{}
	for _, change := range diff.ColumnChanges {
		byName[change.ColumnName] = change
	}
	assert.Equal(t, ActionModify, byName["id"].Action)
	assert.Equal(t, ActionAdd, byName["email"].Action)
	assert.Equal(t, ActionDrop, byName["obsolete"].Action)
}

func TestCompare_ShardKeyChange(t *testing.T) {
	oldTable := simpleTable("orders", schema.Column{Name: "id", Type: "INT"})
	oldTable.ShardKey = &schema.ShardKey{Columns: []string{"id"}}

	newTable := simpleTable("orders", schema.Column{Name: "id", Type: "INT"})
	newTable.ShardKey = &schema.ShardKey{Columns: []string{}}

	result := Compare(
		map[string]*schema.TableDefinition{"orders": oldTable},
		map[string]*schema.TableDefinition{"orders": newTable},
	)
	require.Len(t, result.TableDiffs, 1)
	diff := result.TableDiffs["orders"]
	require.Len(t, diff.ElementChanges, 1)
	assert.Equal(t, "shard key", diff.ElementChanges[0].Element)
}

func TestCompare_StorageAndIndexChanges(t *testing.T) {
	oldTable := simpleTable("docs",
		schema.Column{Name: "id", Type: "INT"},
		schema.Column{Name: "body", Type: "TEXT", Nullable: true},
	)
	oldTable.Storage = &schema.StorageMode{}

	newTable := simpleTable("docs",
		schema.Column{Name: "id", Type: "INT"},
		schema.Column{Name: "body", Type: "TEXT", Nullable: true},
	)
	newTable.Storage = &schema.StorageMode{Rowstore: true}
	newTable.FullTextKeys = []schema.FullTextKey{{Name: "ft", Columns: []string{"body"}}}

	result := Compare(
		map[string]*schema.TableDefinition{"docs": oldTable},
		map[string]*schema.TableDefinition{"docs": newTable},
	)
	require.Len(t, result.TableDiffs, 1)

	elements := map[string]bool{}
	for _, change := range result.TableDiffs["docs"].ElementChanges {
		elements[change.Element] = true
	}
	assert.True(t, elements["storage mode"])
	assert.True(t, elements["fulltext keys"])
}

func TestCompare_NilVersusEmptyShardKeyDiffers(t *testing.T) {
	oldTable := simpleTable("t", schema.Column{Name: "id", Type: "INT"})
	newTable := simpleTable("t", schema.Column{Name: "id", Type: "INT"})
	newTable.ShardKey = &schema.ShardKey{Columns: []string{}}

	result := Compare(
		map[string]*schema.TableDefinition{"t": oldTable},
		map[string]*schema.TableDefinition{"t": newTable},
	)
	require.Len(t, result.TableDiffs, 1)
}
