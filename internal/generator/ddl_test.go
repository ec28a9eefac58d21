package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2tools/s2ddl/internal/dtypes"
	"github.com/s2tools/s2ddl/internal/schema"
)

func mustVector(t *testing.T, dimension int, kind dtypes.ElementKind) *dtypes.Vector {
	t.Helper()
	vec, err := dtypes.NewVector(dimension, kind)
	require.NoError(t, err)
	return vec
}

func strPtr(s string) *string { return &s }

func TestCompile_VectorSearchTable(t *testing.T) {
	embedding := mustVector(t, 1536, dtypes.F32)
	table := &schema.TableDefinition{
		Name: "documents",
		Columns: []schema.Column{
			{Name: "id", Type: "INT"},
			{Name: "title", Type: "TEXT", Nullable: true},
			{Name: "embedding", Vector: embedding, Nullable: true},
		},
		PrimaryKey: []string{"id"},
		ShardKey:   &schema.ShardKey{Columns: []string{"id"}},
		VectorKeys: []schema.VectorKey{
			{Name: "vec_idx", Column: "embedding", IndexOptions: map[string]string{"metric_type": "DOT_PRODUCT"}},
		},
		Storage: &schema.StorageMode{},
	}

	ddl, err := NewCompiler(nil).Compile(table)
	require.NoError(t, err)

	expected := "CREATE TABLE `documents` (\n" +
		"  `id` INT NOT NULL,\n" +
		"  `title` TEXT,\n" +
		"  `embedding` VECTOR(1536, F32),\n" +
		"  PRIMARY KEY (`id`),\n" +
		"  SHARD KEY (`id`),\n" +
		"  VECTOR INDEX `vec_idx` (`embedding`) INDEX_OPTIONS='{\"metric_type\":\"DOT_PRODUCT\"}'\n" +
		") COLUMNSTORE"
	assert.Equal(t, expected, ddl)
}

func TestCompile_Deterministic(t *testing.T) {
	table := &schema.TableDefinition{
		Name: "events",
		Columns: []schema.Column{
			{Name: "id", Type: "BIGINT", AutoIncrement: true},
			{Name: "payload", Type: "JSON", Nullable: true},
		},
		PrimaryKey: []string{"id"},
		MultiValueKeys: []schema.MultiValueKey{
			{Name: "tags_idx", Column: "payload"},
		},
	}

	compiler := NewCompiler(nil)
	first, err := compiler.Compile(table)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := compiler.Compile(table)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompile_IndexOptionsSortedByKey(t *testing.T) {
	table := &schema.TableDefinition{
		Name: "t",
		Columns: []schema.Column{
			{Name: "v", Vector: mustVector(t, 4, dtypes.F32), Nullable: true},
		},
		VectorKeys: []schema.VectorKey{
			{Name: "idx", Column: "v", IndexOptions: map[string]string{
				"nlist":       "1024",
				"index_type":  "IVF_FLAT",
				"metric_type": "EUCLIDEAN_DISTANCE",
			}},
		},
	}

	ddl, err := NewCompiler(nil).Compile(table)
	require.NoError(t, err)
	assert.Contains(t, ddl,
		`INDEX_OPTIONS='{"index_type":"IVF_FLAT","metric_type":"EUCLIDEAN_DISTANCE","nlist":"1024"}'`)
}

func TestCompile_EmptyShardKeyDistinctFromAbsent(t *testing.T) {
	columns := []schema.Column{{Name: "id", Type: "INT"}}

	absent := &schema.TableDefinition{Name: "t", Columns: columns}
	keyless := &schema.TableDefinition{
		Name:     "t",
		Columns:  columns,
		ShardKey: &schema.ShardKey{Columns: []string{}},
	}

	compiler := NewCompiler(nil)
	absentDDL, err := compiler.Compile(absent)
	require.NoError(t, err)
	keylessDDL, err := compiler.Compile(keyless)
	require.NoError(t, err)

	assert.NotContains(t, absentDDL, "SHARD KEY")
	assert.Contains(t, keylessDDL, "SHARD KEY ()")
}

func TestCompile_ShardKeyModifiers(t *testing.T) {
	table := &schema.TableDefinition{
		Name:    "t",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
		ShardKey: &schema.ShardKey{
			Columns:      []string{"id"},
			Only:         true,
			MetadataOnly: true,
		},
	}

	ddl, err := NewCompiler(nil).Compile(table)
	require.NoError(t, err)
	assert.Contains(t, ddl, "SHARD KEY ONLY (`id`) METADATA_ONLY")
}

func TestCompile_ColumnModifiers(t *testing.T) {
	table := &schema.TableDefinition{
		Name: "accounts",
		Columns: []schema.Column{
			{Name: "id", Type: "BIGINT", AutoIncrement: true},
			{Name: "status", Type: "VARCHAR(16)", DefaultValue: strPtr("'active'")},
			{Name: "balance_cents", Type: "BIGINT", DefaultValue: strPtr("0")},
			{Name: "balance", Type: "DECIMAL(20,2)", Nullable: true,
				Computed: &schema.Computed{Expression: "balance_cents / 100"}},
		},
		PrimaryKey: []string{"id"},
	}

	ddl, err := NewCompiler(nil).Compile(table)
	require.NoError(t, err)
	assert.Contains(t, ddl, "`id` BIGINT NOT NULL AUTO_INCREMENT")
	assert.Contains(t, ddl, "`status` VARCHAR(16) NOT NULL DEFAULT 'active'")
	assert.Contains(t, ddl, "`balance_cents` BIGINT NOT NULL DEFAULT 0")
	assert.Contains(t, ddl, "`balance` DECIMAL(20,2) AS (balance_cents / 100) PERSISTED")
}

func TestCompile_FullTextVersions(t *testing.T) {
	base := schema.TableDefinition{
		Name:    "articles",
		Columns: []schema.Column{{Name: "body", Type: "TEXT", Nullable: true}},
	}

	compiler := NewCompiler(nil)

	unversioned := base
	unversioned.FullTextKeys = []schema.FullTextKey{{Name: "ft", Columns: []string{"body"}}}
	ddl, err := compiler.Compile(&unversioned)
	require.NoError(t, err)
	assert.Contains(t, ddl, "FULLTEXT KEY `ft` (`body`)")
	assert.NotContains(t, ddl, "USING VERSION")

	versioned := base
	versioned.FullTextKeys = []schema.FullTextKey{{Name: "ft", Columns: []string{"body"}, Version: 2}}
	ddl, err = compiler.Compile(&versioned)
	require.NoError(t, err)
	assert.Contains(t, ddl, "FULLTEXT USING VERSION 2 KEY `ft` (`body`)")
}

func TestCompile_ColumnGroups(t *testing.T) {
	table := &schema.TableDefinition{
		Name: "wide",
		Columns: []schema.Column{
			{Name: "a", Type: "INT", Nullable: true},
			{Name: "b", Type: "INT", Nullable: true},
		},
		ColumnGroups: []schema.ColumnGroup{
			{Name: "everything"},
			{Name: "pair", Columns: []string{"a", "b"}},
		},
	}

	ddl, err := NewCompiler(nil).Compile(table)
	require.NoError(t, err)
	assert.Contains(t, ddl, "COLUMN GROUP `everything` (*)")
	assert.Contains(t, ddl, "COLUMN GROUP `pair` (`a`, `b`)")
}

func TestCompile_StorageModes(t *testing.T) {
	columns := []schema.Column{{Name: "id", Type: "INT"}}
	compiler := NewCompiler(nil)

	cases := []struct {
		storage *schema.StorageMode
		suffix  string
	}{
		{nil, ")"},
		{&schema.StorageMode{}, ") COLUMNSTORE"},
		{&schema.StorageMode{Rowstore: true}, ") ROWSTORE"},
		{&schema.StorageMode{Rowstore: true, Reference: true}, ") ROWSTORE REFERENCE"},
	}
	for _, tc := range cases {
		table := &schema.TableDefinition{Name: "t", Columns: columns, Storage: tc.storage}
		ddl, err := compiler.Compile(table)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(ddl, tc.suffix), "got %q, want suffix %q", ddl, tc.suffix)
	}
}

func TestCompile_ClauseOrderIsFixed(t *testing.T) {
	table := &schema.TableDefinition{
		Name: "ordering",
		Columns: []schema.Column{
			{Name: "id", Type: "INT"},
			{Name: "doc", Type: "JSON", Nullable: true},
			{Name: "body", Type: "TEXT", Nullable: true},
			{Name: "vec", Vector: mustVector(t, 8, dtypes.F16), Nullable: true},
		},
		PrimaryKey:     []string{"id"},
		ShardKey:       &schema.ShardKey{Columns: []string{"id"}},
		SortKey:        &schema.SortKey{Columns: []string{"id"}},
		VectorKeys:     []schema.VectorKey{{Name: "v_idx", Column: "vec"}},
		MultiValueKeys: []schema.MultiValueKey{{Name: "mv_idx", Column: "doc"}},
		FullTextKeys:   []schema.FullTextKey{{Name: "ft_idx", Columns: []string{"body"}}},
		ColumnGroups:   []schema.ColumnGroup{{Name: "cg"}},
	}

	ddl, err := NewCompiler(nil).Compile(table)
	require.NoError(t, err)

	order := []string{
		"PRIMARY KEY", "SHARD KEY", "SORT KEY",
		"VECTOR INDEX", "MULTI VALUE INDEX", "FULLTEXT KEY", "COLUMN GROUP",
	}
	last := -1
	for _, marker := range order {
		pos := strings.Index(ddl, marker)
		require.GreaterOrEqual(t, pos, 0, "missing %q in %q", marker, ddl)
		assert.Greater(t, pos, last, "%q out of order in %q", marker, ddl)
		last = pos
	}
}

func TestCompile_InvalidIdentifierFailsBeforeOutput(t *testing.T) {
	table := &schema.TableDefinition{
		Name:    "t",
		Columns: []schema.Column{{Name: "", Type: "INT"}},
	}

	ddl, err := NewCompiler(nil).Compile(table)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Empty(t, ddl)

	table = &schema.TableDefinition{
		Name:    "bad\x00name",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
	}
	ddl, err = NewCompiler(nil).Compile(table)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Empty(t, ddl)
}

func TestCompile_BacktickEscaping(t *testing.T) {
	table := &schema.TableDefinition{
		Name:    "odd`name",
		Columns: []schema.Column{{Name: "weird`col", Type: "INT"}},
	}

	ddl, err := NewCompiler(nil).Compile(table)
	require.NoError(t, err)
	assert.Contains(t, ddl, "CREATE TABLE `odd``name`")
	assert.Contains(t, ddl, "`weird``col` INT")
}

func TestCompile_VectorKeyReferenceValidation(t *testing.T) {
	compiler := NewCompiler(nil)

	missing := &schema.TableDefinition{
		Name:       "t",
		Columns:    []schema.Column{{Name: "id", Type: "INT"}},
		VectorKeys: []schema.VectorKey{{Name: "idx", Column: "embedding"}},
	}
	_, err := compiler.Compile(missing)
	assert.ErrorIs(t, err, ErrInvalidSchemaReference)

	wrongType := &schema.TableDefinition{
		Name: "t",
		Columns: []schema.Column{
			{Name: "id", Type: "INT"},
			{Name: "embedding", Type: "TEXT", Nullable: true},
		},
		VectorKeys: []schema.VectorKey{{Name: "idx", Column: "embedding"}},
	}
	_, err = compiler.Compile(wrongType)
	assert.ErrorIs(t, err, ErrInvalidSchemaReference)
}

func TestCompile_MultiValueKeyReferenceValidation(t *testing.T) {
	table := &schema.TableDefinition{
		Name:           "t",
		Columns:        []schema.Column{{Name: "id", Type: "INT"}},
		MultiValueKeys: []schema.MultiValueKey{{Name: "idx", Column: "tags"}},
	}
	_, err := NewCompiler(nil).Compile(table)
	assert.ErrorIs(t, err, ErrInvalidSchemaReference)
}
