package snapshot

import "database/sql"

const (
	// SQLite schema for storing reflected table definitions
	createMetadataTable = `
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	createDefinitionsTable = `
		CREATE TABLE IF NOT EXISTS table_definitions (
			table_name TEXT PRIMARY KEY,
			definition_json TEXT NOT NULL,
			ddl_text TEXT NOT NULL
		);
	`
)

// initializeSchema creates the necessary tables in the SQLite snapshot file
func initializeSchema(db *sql.DB) error {
	schemas := []string{
		createMetadataTable,
		createDefinitionsTable,
	}

	for _, stmt := range schemas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
