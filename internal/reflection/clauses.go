package reflection

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/s2tools/s2ddl/internal/schema"
)

const (
	identPattern = "`(?:[^`]|``)+`|[\\w$]+"
)

var (
	rePrimaryKey = regexp.MustCompile(
		`(?is)^PRIMARY\s+KEY\s*\((.*)\)(?:\s+USING\s+\w+)?$`)
	reShardKey = regexp.MustCompile(
		`(?is)^SHARD\s+KEY(\s+ONLY)?(?:\s+(` + identPattern + `))?\s*\((.*?)\)(\s+METADATA_ONLY)?$`)
	reSortKey = regexp.MustCompile(
		`(?is)^SORT\s+KEY(?:\s+(` + identPattern + `))?\s*\((.*?)\)$`)
	reVectorIndex = regexp.MustCompile(
		`(?is)^VECTOR\s+INDEX\s+(` + identPattern + `)\s*\((.*?)\)(?:\s+INDEX_OPTIONS\s*=\s*'(.*)')?$`)
	reMultiValue = regexp.MustCompile(
		`(?is)^MULTI\s+VALUE\s+(?:INDEX|KEY)\s+(` + identPattern + `)\s*\((.*?)\)(?:\s+USING\s+HASH)?$`)
	reFullText = regexp.MustCompile(
		`(?is)^FULLTEXT(?:\s+USING\s+VERSION\s+(\d+))?\s+(?:KEY|INDEX)\s+(` + identPattern + `)\s*\((.*?)\)$`)
	reColumnGroup = regexp.MustCompile(
		`(?is)^COLUMN\s+GROUP(?:\s+(` + identPattern + `))?\s*\((.*?)\)$`)
	reGenericKey = regexp.MustCompile(
		`(?is)^(?:UNIQUE\s+)?(?:KEY|INDEX)\s+(` + identPattern + `)\s*\((.*?)\)` +
			`(?:\s+USING\s+(HASH|BTREE|CLUSTERED\s+COLUMNSTORE))?\s*$`)
)

// parseState accumulates one table while clauses are classified. Generic
// KEY clauses are held back until all columns are known, because deciding
// whether KEY ... USING HASH is a multi-value index needs the referenced
// column's type and clause order in engine output is not guaranteed.
type parseState struct {
	table       *schema.TableDefinition
	genericKeys []string
}

// parseClause classifies a single top-level clause. Recognizers run in a
// fixed priority order; anything no recognizer claims lands in Extra.
func (st *parseState) parseClause(clause string) error {
	upper := strings.ToUpper(clause)

	switch {
	case strings.HasPrefix(upper, "PRIMARY KEY"):
		m := rePrimaryKey.FindStringSubmatch(clause)
		if m == nil {
			return clauseError(clause)
		}
		st.table.PrimaryKey = parseColumnList(m[1])
		return nil

	case strings.HasPrefix(upper, "SHARD KEY"):
		m := reShardKey.FindStringSubmatch(clause)
		if m == nil {
			return clauseError(clause)
		}
		st.table.ShardKey = &schema.ShardKey{
			Columns:      parseColumnList(m[3]),
			Only:         m[1] != "",
			MetadataOnly: m[4] != "",
		}
		return nil

	case strings.HasPrefix(upper, "SORT KEY"):
		m := reSortKey.FindStringSubmatch(clause)
		if m == nil {
			return clauseError(clause)
		}
		st.table.SortKey = &schema.SortKey{Columns: parseColumnList(m[2])}
		return nil

	case strings.HasPrefix(upper, "VECTOR INDEX") || strings.HasPrefix(upper, "VECTOR KEY"):
		m := reVectorIndex.FindStringSubmatch(clause)
		if m == nil {
			return clauseError(clause)
		}
		cols := parseColumnList(m[2])
		if len(cols) != 1 {
			return clauseError(clause)
		}
		options, err := parseIndexOptions(m[3])
		if err != nil {
			return fmt.Errorf("%w: bad INDEX_OPTIONS in %q: %v", ErrUnparsableClause, clause, err)
		}
		st.table.VectorKeys = append(st.table.VectorKeys, schema.VectorKey{
			Name:         unquoteIdentifier(m[1]),
			Column:       cols[0],
			IndexOptions: options,
		})
		return nil

	case strings.HasPrefix(upper, "MULTI VALUE"):
		m := reMultiValue.FindStringSubmatch(clause)
		if m == nil {
			return clauseError(clause)
		}
		cols := parseColumnList(m[2])
		if len(cols) != 1 {
			return clauseError(clause)
		}
		st.table.MultiValueKeys = append(st.table.MultiValueKeys, schema.MultiValueKey{
			Name:   unquoteIdentifier(m[1]),
			Column: cols[0],
		})
		return nil

	case strings.HasPrefix(upper, "FULLTEXT"):
		m := reFullText.FindStringSubmatch(clause)
		if m == nil {
			return clauseError(clause)
		}
		key := schema.FullTextKey{
			Name:    unquoteIdentifier(m[2]),
			Columns: parseColumnList(m[3]),
		}
		if m[1] != "" {
			key.Version, _ = strconv.Atoi(m[1])
		}
		st.table.FullTextKeys = append(st.table.FullTextKeys, key)
		return nil

	case strings.HasPrefix(upper, "COLUMN GROUP"):
		m := reColumnGroup.FindStringSubmatch(clause)
		if m == nil {
			return clauseError(clause)
		}
		group := schema.ColumnGroup{Name: unquoteIdentifier(m[1])}
		if body := strings.TrimSpace(m[2]); body != "*" {
			group.Columns = parseColumnList(body)
		}
		st.table.ColumnGroups = append(st.table.ColumnGroups, group)
		return nil

	case strings.HasPrefix(upper, "KEY") || strings.HasPrefix(upper, "INDEX") ||
		strings.HasPrefix(upper, "UNIQUE"):
		st.genericKeys = append(st.genericKeys, clause)
		return nil

	case strings.HasPrefix(upper, "CONSTRAINT") || strings.HasPrefix(upper, "FOREIGN KEY") ||
		strings.HasPrefix(upper, "CHECK"):
		st.table.Extra = append(st.table.Extra, clause)
		return nil

	case strings.HasPrefix(clause, "`") || looksLikeColumn(clause):
		return st.parseColumn(clause)
	}

	st.table.Extra = append(st.table.Extra, clause)
	return nil
}

// resolveGenericKeys runs after every column has been parsed. A key over a
// single JSON column USING HASH is the engine's multi-value index; a key
// USING CLUSTERED COLUMNSTORE is a column group. Everything else is kept in
// Extra unmodeled.
func (st *parseState) resolveGenericKeys() {
	for _, clause := range st.genericKeys {
		m := reGenericKey.FindStringSubmatch(clause)
		if m == nil {
			st.table.Extra = append(st.table.Extra, clause)
			continue
		}
		name := unquoteIdentifier(m[1])
		cols := parseColumnList(m[2])
		using := strings.ToUpper(strings.Join(strings.Fields(m[3]), " "))

		switch {
		case using == "CLUSTERED COLUMNSTORE":
			st.table.ColumnGroups = append(st.table.ColumnGroups, schema.ColumnGroup{
				Name:    name,
				Columns: cols,
			})
		case using == "HASH" && len(cols) == 1 && st.isJSONColumn(cols[0]):
			st.table.MultiValueKeys = append(st.table.MultiValueKeys, schema.MultiValueKey{
				Name:   name,
				Column: cols[0],
			})
		default:
			st.table.Extra = append(st.table.Extra, clause)
		}
	}
	st.genericKeys = nil
}

func (st *parseState) isJSONColumn(name string) bool {
	col := st.table.ColumnByName(name)
	return col != nil && strings.EqualFold(strings.TrimSpace(col.Type), "JSON")
}

// parseColumnList splits a parenthesized column list, dropping per-column
// ASC/DESC directions and identifier quoting.
func parseColumnList(body string) []string {
	cols := []string{}
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		upper := strings.ToUpper(part)
		if strings.HasSuffix(upper, " DESC") {
			part = strings.TrimSpace(part[:len(part)-5])
		} else if strings.HasSuffix(upper, " ASC") {
			part = strings.TrimSpace(part[:len(part)-4])
		}
		cols = append(cols, unquoteIdentifier(part))
	}
	return cols
}

// parseIndexOptions decodes the JSON object inside INDEX_OPTIONS='...'.
func parseIndexOptions(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}
	options := make(map[string]string, len(decoded))
	for key, value := range decoded {
		options[key] = fmt.Sprint(value)
	}
	return options, nil
}

func clauseError(clause string) error {
	return fmt.Errorf("%w: %q", ErrUnparsableClause, strings.TrimSpace(clause))
}
