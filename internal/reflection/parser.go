package reflection

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/s2tools/s2ddl/internal/schema"
)

// ErrUnparsableClause is returned when a clause opens with a recognized
// keyword but its body cannot be parsed. The whole parse is aborted:
// returning a partially understood table would be unsafe.
var ErrUnparsableClause = errors.New("unparsable clause")

var reCreateHeader = regexp.MustCompile(
	`(?is)^\s*CREATE\s+((?:ROWSTORE|REFERENCE|GLOBAL|TEMPORARY)\s+)*TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` +
		"(`(?:[^`]|``)+`|[\\w$]+)",
)

// Parse reconstructs a table definition from the text returned by
// SHOW CREATE TABLE. Clause order inside the parenthesized block is not
// assumed: any recognized clause may appear at any position. Clauses that
// are not recognized at all are preserved verbatim in Extra rather than
// failing the parse, since engines grow DDL syntax faster than this model
// tracks it.
func Parse(ddl string) (*schema.TableDefinition, error) {
	stmt := strings.TrimSpace(ddl)
	stmt = strings.TrimSuffix(stmt, ";")

	header := reCreateHeader.FindStringSubmatch(stmt)
	if header == nil {
		return nil, fmt.Errorf("%w: no CREATE TABLE header in %q", ErrUnparsableClause, firstLine(stmt))
	}

	table := &schema.TableDefinition{
		Name: unquoteIdentifier(header[2]),
	}
	applyHeaderStorage(table, header[0][:len(header[0])-len(header[2])])

	open := strings.Index(stmt[len(header[0]):], "(")
	if open == -1 {
		return nil, fmt.Errorf("%w: missing column block in %q", ErrUnparsableClause, firstLine(stmt))
	}
	open += len(header[0])

	body, tail, err := parenBlock(stmt, open)
	if err != nil {
		return nil, err
	}

	st := &parseState{table: table}
	for _, clause := range splitTopLevel(body) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if err := st.parseClause(clause); err != nil {
			return nil, err
		}
	}
	st.resolveGenericKeys()

	applyTailStorage(table, tail)
	return table, nil
}

// parenBlock returns the content between the parenthesis at open and its
// matching close, plus the remaining tail. Nesting and quoted strings are
// respected so the scan never closes early inside a type argument list or
// an expression body.
func parenBlock(stmt string, open int) (body, tail string, err error) {
	depth := 0
	var quote byte
	for i := open; i < len(stmt); i++ {
		ch := stmt[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return stmt[open+1 : i], stmt[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: unbalanced parentheses in %q", ErrUnparsableClause, firstLine(stmt))
}

// splitTopLevel splits the column/constraint block on commas that sit at
// parenthesis depth zero and outside quoted strings, so commas inside
// VECTOR(1536, F32) or a computed expression never cause a false split.
func splitTopLevel(body string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, body[start:])
	return parts
}

func applyHeaderStorage(table *schema.TableDefinition, header string) {
	upper := strings.ToUpper(header)
	rowstore := containsWord(upper, "ROWSTORE")
	reference := containsWord(upper, "REFERENCE")
	if rowstore || reference {
		table.Storage = &schema.StorageMode{Rowstore: rowstore, Reference: reference}
	}
}

// applyTailStorage reads the table-option suffix after the closing
// parenthesis. Only storage keywords are modeled; other options
// (AUTOSTATS_*, COMPRESSION=, charsets) are ignored.
func applyTailStorage(table *schema.TableDefinition, tail string) {
	upper := strings.ToUpper(stripQuoted(tail))
	rowstore := containsWord(upper, "ROWSTORE")
	columnstore := containsWord(upper, "COLUMNSTORE")
	reference := containsWord(upper, "REFERENCE")
	if !rowstore && !columnstore && !reference {
		return
	}
	if table.Storage == nil {
		table.Storage = &schema.StorageMode{}
	}
	table.Storage.Rowstore = table.Storage.Rowstore || rowstore
	table.Storage.Reference = table.Storage.Reference || reference
}

// stripQuoted blanks single-quoted literals so option values like
// COMMENT='reference data' cannot masquerade as storage keywords.
func stripQuoted(s string) string {
	var sb strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

var wordPattern = regexp.MustCompile(`[A-Z_]+`)

func containsWord(upper, word string) bool {
	for _, w := range wordPattern.FindAllString(upper, -1) {
		if w == word {
			return true
		}
	}
	return false
}

func unquoteIdentifier(s string) string {
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		return strings.ReplaceAll(s[1:len(s)-1], "``", "`")
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
