package reflection

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/s2tools/s2ddl/internal/dtypes"
	"github.com/s2tools/s2ddl/internal/schema"
)

var reColumnHead = regexp.MustCompile(`(?s)^(` + identPattern + `)\s+([\w$]+)(.*)$`)

var (
	reUnsigned     = regexp.MustCompile(`(?i)^UNSIGNED\b`)
	reZerofill     = regexp.MustCompile(`(?i)^ZEROFILL\b`)
	reCharacterSet = regexp.MustCompile(`(?i)^CHARACTER\s+SET\s+[\w]+`)
	reCollate      = regexp.MustCompile(`(?i)^COLLATE\s+[\w]+`)
	reNotNull      = regexp.MustCompile(`(?i)^NOT\s+NULL\b`)
	reNull         = regexp.MustCompile(`(?i)^NULL\b`)
	reDefault      = regexp.MustCompile(
		`(?i)^DEFAULT\s+('(?:''|[^'])*'|[-\w.]+(?:\([^)]*\))?(?:\s+ON\s+UPDATE\s+[-\w.()]+)?)`)
	reAutoIncrement = regexp.MustCompile(`(?i)^AUTO_INCREMENT\b`)
	reComputedLead  = regexp.MustCompile(`(?i)^(?:GENERATED\s+ALWAYS\s+)?AS\s*\(`)
	rePersistence   = regexp.MustCompile(`(?i)^(PERSISTED|STORED|VIRTUAL)\b`)
	reComment       = regexp.MustCompile(`(?i)^COMMENT\s+'(?:''|[^'])*'`)
)

// Words that open table-level clauses and therefore can never be a bare
// column name at the start of a clause.
var clauseLeadWords = map[string]bool{
	"PRIMARY": true, "SHARD": true, "SORT": true, "VECTOR": true,
	"MULTI": true, "FULLTEXT": true, "COLUMN": true, "KEY": true,
	"INDEX": true, "UNIQUE": true, "CONSTRAINT": true, "FOREIGN": true,
	"CHECK": true, "SPATIAL": true, "PERIOD": true,
}

func looksLikeColumn(clause string) bool {
	fields := strings.Fields(clause)
	if len(fields) < 2 {
		return false
	}
	return !clauseLeadWords[strings.ToUpper(fields[0])]
}

// parseColumn extracts one column definition: name, type text with its
// arguments and charset modifiers, nullability, default, AUTO_INCREMENT,
// and a persisted computed expression. The type text is preserved verbatim
// except for VECTOR, which is normalized through the type model so the
// dimension and element kind become structured data.
func (st *parseState) parseColumn(clause string) error {
	m := reColumnHead.FindStringSubmatch(clause)
	if m == nil {
		return clauseError(clause)
	}

	col := schema.Column{
		Name:     unquoteIdentifier(m[1]),
		Nullable: true,
	}
	keyword := m[2]
	rest := m[3]

	var args string
	hasArgs := false
	if trimmed := strings.TrimLeft(rest, " \t"); strings.HasPrefix(trimmed, "(") {
		open := len(rest) - len(trimmed)
		body, tail, err := parenBlock(rest, open)
		if err != nil {
			return clauseError(clause)
		}
		args = body
		hasArgs = true
		rest = tail
	}

	if strings.EqualFold(keyword, "VECTOR") {
		vec, err := parseVectorArgs(args)
		if err != nil {
			return fmt.Errorf("%w: column %q: %v", ErrUnparsableClause, col.Name, err)
		}
		col.Vector = vec
		col.Type = vec.DDLText()
	} else {
		col.Type = keyword
		if hasArgs {
			col.Type += "(" + args + ")"
		}
	}

	rest = strings.TrimSpace(rest)
	for rest != "" {
		if matched, ok := takeAny(&rest, reUnsigned, reZerofill, reCharacterSet, reCollate); ok {
			col.Type += " " + matched
			continue
		}
		if _, ok := take(&rest, reNotNull); ok {
			col.Nullable = false
			continue
		}
		if _, ok := take(&rest, reNull); ok {
			col.Nullable = true
			continue
		}
		if _, ok := take(&rest, reAutoIncrement); ok {
			col.AutoIncrement = true
			continue
		}
		if _, ok := take(&rest, reComment); ok {
			continue
		}
		if m := reDefault.FindStringSubmatch(rest); m != nil {
			rest = strings.TrimSpace(rest[len(m[0]):])
			if !strings.EqualFold(m[1], "NULL") {
				value := m[1]
				col.DefaultValue = &value
			}
			continue
		}
		if lead := reComputedLead.FindString(rest); lead != "" {
			expr, tail, err := parenBlock(rest, len(lead)-1)
			if err != nil {
				return clauseError(clause)
			}
			tail = strings.TrimSpace(tail)
			if m := rePersistence.FindString(tail); m != "" {
				tail = strings.TrimSpace(tail[len(m):])
			}
			col.Computed = &schema.Computed{Expression: expr}
			rest = tail
			continue
		}
		// Unknown trailing token; skip one word and keep going.
		fields := strings.SplitN(rest, " ", 2)
		if len(fields) < 2 {
			rest = ""
		} else {
			rest = strings.TrimSpace(fields[1])
		}
	}

	st.table.Columns = append(st.table.Columns, col)
	return nil
}

func take(rest *string, re *regexp.Regexp) (string, bool) {
	m := re.FindString(*rest)
	if m == "" {
		return "", false
	}
	*rest = strings.TrimSpace((*rest)[len(m):])
	return m, true
}

func takeAny(rest *string, res ...*regexp.Regexp) (string, bool) {
	for _, re := range res {
		if m, ok := take(rest, re); ok {
			return m, true
		}
	}
	return "", false
}

// parseVectorArgs reads the positional VECTOR parameters: dimension, then
// an optional element kind defaulting to F32.
func parseVectorArgs(args string) (*dtypes.Vector, error) {
	parts := strings.Split(args, ",")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return nil, fmt.Errorf("missing dimension")
	}
	dimension, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("bad dimension %q", strings.TrimSpace(parts[0]))
	}
	kind := dtypes.DefaultElementKind
	if len(parts) > 1 {
		kind, err = dtypes.ParseElementKind(parts[1])
		if err != nil {
			return nil, err
		}
	}
	if len(parts) > 2 {
		return nil, fmt.Errorf("too many parameters")
	}
	return dtypes.NewVector(dimension, kind)
}
