package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/s2tools/s2ddl/internal/database"
	"github.com/s2tools/s2ddl/internal/reflection"
	"github.com/s2tools/s2ddl/internal/schema"
)

// Snapshot is a point-in-time capture of reflected table definitions
type Snapshot struct {
	Metadata map[string]string
	Tables   map[string]*schema.TableDefinition
}

// Create reflects the given tables (all tables when the list is empty) and
// stores their definitions plus raw DDL text in a local SQLite file.
func Create(exec database.Executor, tables []string, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Remove existing snapshot file if it exists
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("failed to remove existing snapshot: %w", err)
		}
	}

	snapshotDB, err := sql.Open("sqlite", outputPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot database: %w", err)
	}
	defer snapshotDB.Close()

	if err := initializeSchema(snapshotDB); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	metadata := map[string]string{
		"created_at": time.Now().Format(time.RFC3339),
	}
	for key, value := range metadata {
		_, err := snapshotDB.Exec("INSERT INTO metadata (key, value) VALUES (?, ?)", key, value)
		if err != nil {
			return fmt.Errorf("failed to insert metadata: %w", err)
		}
	}

	if len(tables) == 0 {
		tables, err = exec.ListTables()
		if err != nil {
			return fmt.Errorf("failed to list tables: %w", err)
		}
	}

	for _, tableName := range tables {
		if err := snapshotTable(exec, snapshotDB, tableName); err != nil {
			return fmt.Errorf("failed to snapshot table %s: %w", tableName, err)
		}
	}

	return nil
}

func snapshotTable(exec database.Executor, snapshotDB *sql.DB, tableName string) error {
	ddl, err := exec.ShowCreateTable(tableName)
	if err != nil {
		return fmt.Errorf("failed to fetch DDL: %w", err)
	}

	table, err := reflection.Parse(ddl)
	if err != nil {
		return fmt.Errorf("failed to parse DDL: %w", err)
	}

	definitionJSON, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	_, err = snapshotDB.Exec(
		"INSERT INTO table_definitions (table_name, definition_json, ddl_text) VALUES (?, ?, ?)",
		tableName,
		string(definitionJSON),
		ddl,
	)
	if err != nil {
		return fmt.Errorf("failed to insert definition: %w", err)
	}

	return nil
}

// Load reads a snapshot back from a SQLite file
func Load(snapshotPath string) (*Snapshot, error) {
	if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot file does not exist: %s", snapshotPath)
	}

	db, err := sql.Open("sqlite", snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	snapshot := &Snapshot{
		Metadata: make(map[string]string),
		Tables:   make(map[string]*schema.TableDefinition),
	}

	rows, err := db.Query("SELECT key, value FROM metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		snapshot.Metadata[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	defRows, err := db.Query("SELECT table_name, definition_json FROM table_definitions")
	if err != nil {
		return nil, fmt.Errorf("failed to query table definitions: %w", err)
	}
	defer defRows.Close()

	for defRows.Next() {
		var tableName, definitionJSON string
		if err := defRows.Scan(&tableName, &definitionJSON); err != nil {
			return nil, fmt.Errorf("failed to scan table definition: %w", err)
		}

		var table schema.TableDefinition
		if err := json.Unmarshal([]byte(definitionJSON), &table); err != nil {
			return nil, fmt.Errorf("failed to unmarshal definition: %w", err)
		}

		snapshot.Tables[tableName] = &table
	}

	return snapshot, defRows.Err()
}
