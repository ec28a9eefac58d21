package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/s2tools/s2ddl/internal/schema"
)

// ErrInvalidSchemaReference is returned when an extension element names a
// column that is absent from the table or has the wrong type.
var ErrInvalidSchemaReference = errors.New("invalid schema reference")

// Compiler renders table definitions as CREATE TABLE statements. It is a
// pure transformation: the same definition always compiles to byte-identical
// text, which is what makes compiled output comparable against reflected
// output in tests.
type Compiler struct {
	quoter Quoter
}

// NewCompiler creates a compiler with the given quoting policy. A nil
// quoter selects backtick quoting.
func NewCompiler(quoter Quoter) *Compiler {
	if quoter == nil {
		quoter = BacktickQuoter{}
	}
	return &Compiler{quoter: quoter}
}

// Compile produces the CREATE TABLE statement for a table definition.
// Table-level clauses follow a fixed order: primary key, shard key, sort
// key, vector keys, multi-value keys, full-text keys, column groups. The
// storage mode trails the closing parenthesis.
func (c *Compiler) Compile(table *schema.TableDefinition) (string, error) {
	if err := c.validate(table); err != nil {
		return "", err
	}

	var parts []string

	for i := range table.Columns {
		def, err := c.columnDefinition(&table.Columns[i])
		if err != nil {
			return "", err
		}
		parts = append(parts, def)
	}

	if len(table.PrimaryKey) > 0 {
		cols, err := c.quoteAll(table.PrimaryKey)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(cols, ", ")))
	}

	if table.ShardKey != nil {
		clause, err := c.shardKeyClause(table.ShardKey)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}

	if table.SortKey != nil {
		cols, err := c.quoteAll(table.SortKey.Columns)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("SORT KEY (%s)", strings.Join(cols, ", ")))
	}

	for i := range table.VectorKeys {
		clause, err := c.vectorKeyClause(&table.VectorKeys[i])
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}

	for i := range table.MultiValueKeys {
		clause, err := c.multiValueKeyClause(&table.MultiValueKeys[i])
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}

	for i := range table.FullTextKeys {
		clause, err := c.fullTextKeyClause(&table.FullTextKeys[i])
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}

	for i := range table.ColumnGroups {
		clause, err := c.columnGroupClause(&table.ColumnGroups[i])
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}

	tableName, err := c.quoter.Quote(table.Name)
	if err != nil {
		return "", err
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", tableName, strings.Join(parts, ",\n  "))
	if table.Storage != nil {
		stmt += " " + storageOption(table.Storage)
	}
	return stmt, nil
}

// validate checks extension-element references before any text is emitted,
// so a failed compile never produces partial output.
func (c *Compiler) validate(table *schema.TableDefinition) error {
	for i := range table.VectorKeys {
		key := &table.VectorKeys[i]
		col := table.ColumnByName(key.Column)
		if col == nil {
			return fmt.Errorf("%w: vector key %q references unknown column %q",
				ErrInvalidSchemaReference, key.Name, key.Column)
		}
		if col.Vector == nil {
			return fmt.Errorf("%w: vector key %q references non-vector column %q",
				ErrInvalidSchemaReference, key.Name, key.Column)
		}
	}
	for i := range table.MultiValueKeys {
		key := &table.MultiValueKeys[i]
		if table.ColumnByName(key.Column) == nil {
			return fmt.Errorf("%w: multi-value key %q references unknown column %q",
				ErrInvalidSchemaReference, key.Name, key.Column)
		}
	}
	return nil
}

func (c *Compiler) columnDefinition(col *schema.Column) (string, error) {
	name, err := c.quoter.Quote(col.Name)
	if err != nil {
		return "", err
	}

	typeText := col.Type
	if col.Vector != nil {
		typeText = col.Vector.DDLText()
	}
	def := name + " " + typeText

	if !col.Nullable {
		def += " NOT NULL"
	}
	if col.DefaultValue != nil {
		def += " DEFAULT " + *col.DefaultValue
	}
	if col.AutoIncrement {
		def += " AUTO_INCREMENT"
	}
	if col.Computed != nil {
		def += fmt.Sprintf(" AS (%s) PERSISTED", col.Computed.Expression)
	}
	return def, nil
}

func (c *Compiler) shardKeyClause(key *schema.ShardKey) (string, error) {
	cols, err := c.quoteAll(key.Columns)
	if err != nil {
		return "", err
	}
	clause := "SHARD KEY"
	if key.Only {
		clause += " ONLY"
	}
	clause += fmt.Sprintf(" (%s)", strings.Join(cols, ", "))
	if key.MetadataOnly {
		clause += " METADATA_ONLY"
	}
	return clause, nil
}

func (c *Compiler) vectorKeyClause(key *schema.VectorKey) (string, error) {
	name, err := c.quoter.Quote(key.Name)
	if err != nil {
		return "", err
	}
	col, err := c.quoter.Quote(key.Column)
	if err != nil {
		return "", err
	}
	clause := fmt.Sprintf("VECTOR INDEX %s (%s)", name, col)
	if len(key.IndexOptions) > 0 {
		clause += fmt.Sprintf(" INDEX_OPTIONS='%s'", encodeIndexOptions(key.IndexOptions))
	}
	return clause, nil
}

func (c *Compiler) multiValueKeyClause(key *schema.MultiValueKey) (string, error) {
	name, err := c.quoter.Quote(key.Name)
	if err != nil {
		return "", err
	}
	col, err := c.quoter.Quote(key.Column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("MULTI VALUE INDEX %s (%s)", name, col), nil
}

func (c *Compiler) fullTextKeyClause(key *schema.FullTextKey) (string, error) {
	name, err := c.quoter.Quote(key.Name)
	if err != nil {
		return "", err
	}
	cols, err := c.quoteAll(key.Columns)
	if err != nil {
		return "", err
	}
	if key.Version > 0 {
		return fmt.Sprintf("FULLTEXT USING VERSION %d KEY %s (%s)",
			key.Version, name, strings.Join(cols, ", ")), nil
	}
	return fmt.Sprintf("FULLTEXT KEY %s (%s)", name, strings.Join(cols, ", ")), nil
}

func (c *Compiler) columnGroupClause(group *schema.ColumnGroup) (string, error) {
	name, err := c.quoter.Quote(group.Name)
	if err != nil {
		return "", err
	}
	if len(group.Columns) == 0 {
		return fmt.Sprintf("COLUMN GROUP %s (*)", name), nil
	}
	cols, err := c.quoteAll(group.Columns)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("COLUMN GROUP %s (%s)", name, strings.Join(cols, ", ")), nil
}

func (c *Compiler) quoteAll(names []string) ([]string, error) {
	quoted := make([]string, len(names))
	for i, name := range names {
		q, err := c.quoter.Quote(name)
		if err != nil {
			return nil, err
		}
		quoted[i] = q
	}
	return quoted, nil
}

func storageOption(mode *schema.StorageMode) string {
	if !mode.Rowstore {
		return "COLUMNSTORE"
	}
	if mode.Reference {
		return "ROWSTORE REFERENCE"
	}
	return "ROWSTORE"
}
