package schema

import "github.com/s2tools/s2ddl/internal/dtypes"

// Column represents a single column definition
type Column struct {
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Vector        *dtypes.Vector `json:"vector,omitempty"`
	Nullable      bool           `json:"nullable"`
	DefaultValue  *string        `json:"default_value,omitempty"`
	AutoIncrement bool           `json:"auto_increment"`
	Computed      *Computed      `json:"computed,omitempty"`
}

// Computed marks a column whose value is calculated from a SQL expression
// over sibling columns and physically stored. The expression is kept as
// opaque SQL text.
type Computed struct {
	Expression string `json:"expression"`
}

// ShardKey designates the columns that determine row distribution across
// cluster nodes. An empty Columns slice is meaningful: it requests keyless
// (random) sharding, which is distinct from having no shard key at all.
type ShardKey struct {
	Columns      []string `json:"columns"`
	Only         bool     `json:"only,omitempty"`
	MetadataOnly bool     `json:"metadata_only,omitempty"`
}

// SortKey designates the on-disk ordering of rows within a shard.
type SortKey struct {
	Columns []string `json:"columns"`
}

// VectorKey is a similarity-search index over one vector-typed column.
// IndexOptions holds the engine option map, e.g. metric_type.
type VectorKey struct {
	Name         string            `json:"name"`
	Column       string            `json:"column"`
	IndexOptions map[string]string `json:"index_options,omitempty"`
}

// MultiValueKey indexes individual elements of an array-shaped JSON column.
type MultiValueKey struct {
	Name   string `json:"name"`
	Column string `json:"column"`
}

// FullTextKey is a full-text index. Version selects the tokenizer
// generation; any explicit version is emitted with USING VERSION.
type FullTextKey struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Version int      `json:"version,omitempty"`
}

// ColumnGroup co-locates columns for wide-table storage. An empty Columns
// slice means all columns, written as (*).
type ColumnGroup struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns,omitempty"`
}

// StorageMode selects the table layout. The zero value is columnstore;
// Reference is only meaningful together with Rowstore.
type StorageMode struct {
	Rowstore  bool `json:"rowstore"`
	Reference bool `json:"reference,omitempty"`
}

// TableDefinition is the full structured model of one table: what the
// compiler consumes and the reflector produces. Nil element pointers mean
// "no clause"; Extra preserves clause text that was not recognized.
type TableDefinition struct {
	Name           string          `json:"name"`
	Columns        []Column        `json:"columns"`
	PrimaryKey     []string        `json:"primary_key,omitempty"`
	ShardKey       *ShardKey       `json:"shard_key,omitempty"`
	SortKey        *SortKey        `json:"sort_key,omitempty"`
	VectorKeys     []VectorKey     `json:"vector_keys,omitempty"`
	MultiValueKeys []MultiValueKey `json:"multi_value_keys,omitempty"`
	FullTextKeys   []FullTextKey   `json:"fulltext_keys,omitempty"`
	ColumnGroups   []ColumnGroup   `json:"column_groups,omitempty"`
	Storage        *StorageMode    `json:"storage,omitempty"`
	Extra          []string        `json:"extra,omitempty"`
}

// ColumnByName returns the column with the given name, or nil.
func (t *TableDefinition) ColumnByName(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}
