package diff

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/s2tools/s2ddl/internal/schema"
)

// Action represents the type of change
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionDrop   Action = "DROP"
	ActionModify Action = "MODIFY"
)

// TableDiff represents the differences for a single table
type TableDiff struct {
	TableName      string
	Action         Action
	Old            *schema.TableDefinition
	New            *schema.TableDefinition
	ColumnChanges  []ColumnChange
	ElementChanges []ElementChange
}

// ColumnChange represents a change to a column
type ColumnChange struct {
	ColumnName string
	Action     Action
	OldColumn  *schema.Column
	NewColumn  *schema.Column
}

// ElementChange records a change to a table-level dialect element: shard
// key, sort key, storage mode, or one of the index sets.
type ElementChange struct {
	Element string
	Detail  string
}

// compareTables compares two definitions of the same table; nil means no
// differences.
func compareTables(old, new *schema.TableDefinition) *TableDiff {
	diff := &TableDiff{
		TableName: new.Name,
		Action:    ActionModify,
		Old:       old,
		New:       new,
	}

	diff.ColumnChanges = compareColumns(old, new)
	diff.ElementChanges = compareElements(old, new)

	if len(diff.ColumnChanges) == 0 && len(diff.ElementChanges) == 0 {
		return nil
	}
	return diff
}

func compareColumns(old, new *schema.TableDefinition) []ColumnChange {
	var changes []ColumnChange

	oldColumns := make(map[string]*schema.Column)
	for i := range old.Columns {
		oldColumns[old.Columns[i].Name] = &old.Columns[i]
	}

	newColumns := make(map[string]*schema.Column)
	var newOrder []string
	for i := range new.Columns {
		newColumns[new.Columns[i].Name] = &new.Columns[i]
		newOrder = append(newOrder, new.Columns[i].Name)
	}

	for _, name := range newOrder {
		newCol := newColumns[name]
		if oldCol, exists := oldColumns[name]; exists {
			if !reflect.DeepEqual(oldCol, newCol) {
				changes = append(changes, ColumnChange{
					ColumnName: name,
					Action:     ActionModify,
					OldColumn:  oldCol,
					NewColumn:  newCol,
				})
			}
		} else {
			changes = append(changes, ColumnChange{
				ColumnName: name,
				Action:     ActionAdd,
				NewColumn:  newCol,
			})
		}
	}

	var dropped []string
	for name := range oldColumns {
		if _, exists := newColumns[name]; !exists {
			dropped = append(dropped, name)
		}
	}
	sort.Strings(dropped)
	for _, name := range dropped {
		changes = append(changes, ColumnChange{
			ColumnName: name,
			Action:     ActionDrop,
			OldColumn:  oldColumns[name],
		})
	}

	return changes
}

func compareElements(old, new *schema.TableDefinition) []ElementChange {
	var changes []ElementChange

	add := func(element string, oldValue, newValue any) {
		if !reflect.DeepEqual(oldValue, newValue) {
			changes = append(changes, ElementChange{
				Element: element,
				Detail:  fmt.Sprintf("%v -> %v", describe(oldValue), describe(newValue)),
			})
		}
	}

	add("primary key", old.PrimaryKey, new.PrimaryKey)
	add("shard key", old.ShardKey, new.ShardKey)
	add("sort key", old.SortKey, new.SortKey)
	add("vector keys", old.VectorKeys, new.VectorKeys)
	add("multi-value keys", old.MultiValueKeys, new.MultiValueKeys)
	add("fulltext keys", old.FullTextKeys, new.FullTextKeys)
	add("column groups", old.ColumnGroups, new.ColumnGroups)
	add("storage mode", old.Storage, new.Storage)

	return changes
}

func describe(value any) string {
	v := reflect.ValueOf(value)
	if !v.IsValid() || (v.Kind() == reflect.Ptr || v.Kind() == reflect.Slice) && v.IsNil() {
		return "(none)"
	}
	if v.Kind() == reflect.Ptr {
		return fmt.Sprintf("%+v", v.Elem().Interface())
	}
	return fmt.Sprintf("%+v", value)
}
