package diff

import (
	"fmt"
	"sort"

	"github.com/s2tools/s2ddl/internal/schema"
)

// Result holds the comparison of two sets of table definitions
type Result struct {
	TableDiffs map[string]*TableDiff
}

// Compare compares two snapshots of table definitions keyed by table name
func Compare(old, new map[string]*schema.TableDefinition) *Result {
	result := &Result{
		TableDiffs: make(map[string]*TableDiff),
	}

	tableNames := make(map[string]bool)
	for name := range old {
		tableNames[name] = true
	}
	for name := range new {
		tableNames[name] = true
	}

	for tableName := range tableNames {
		oldTable, existsOld := old[tableName]
		newTable, existsNew := new[tableName]

		if !existsOld {
			result.TableDiffs[tableName] = &TableDiff{
				TableName: tableName,
				Action:    ActionAdd,
				New:       newTable,
			}
			continue
		}

		if !existsNew {
			result.TableDiffs[tableName] = &TableDiff{
				TableName: tableName,
				Action:    ActionDrop,
				Old:       oldTable,
			}
			continue
		}

		if tableDiff := compareTables(oldTable, newTable); tableDiff != nil {
			result.TableDiffs[tableName] = tableDiff
		}
	}

	return result
}

// Display prints the diff result in a human-readable format
func Display(result *Result) {
	if len(result.TableDiffs) == 0 {
		fmt.Println("No differences found.")
		return
	}

	names := make([]string, 0, len(result.TableDiffs))
	for name := range result.TableDiffs {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("=== Schema Differences ===")
	fmt.Println()
	for _, name := range names {
		displayTableDiff(result.TableDiffs[name])
	}
}

func displayTableDiff(diff *TableDiff) {
	fmt.Printf("Table: %s\n", diff.TableName)

	switch diff.Action {
	case ActionAdd:
		fmt.Printf("  Action: ADD (new table)\n")
		fmt.Printf("  Columns: %d\n", len(diff.New.Columns))
	case ActionDrop:
		fmt.Printf("  Action: DROP (removed table)\n")
	case ActionModify:
		fmt.Printf("  Action: MODIFY\n")
		if len(diff.ColumnChanges) > 0 {
			fmt.Printf("  Column changes:\n")
			for _, change := range diff.ColumnChanges {
				fmt.Printf("    - %s: %s\n", change.ColumnName, change.Action)
			}
		}
		for _, change := range diff.ElementChanges {
			fmt.Printf("  %s: %s\n", change.Element, change.Detail)
		}
	}
	fmt.Println()
}
