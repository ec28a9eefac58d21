package database

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// SingleStore is an Executor over the MySQL wire protocol.
type SingleStore struct {
	config Config
	db     *sql.DB
}

// NewSingleStore creates an unconnected client
func NewSingleStore(config Config) *SingleStore {
	return &SingleStore{config: config}
}

// Connect establishes and verifies the connection
func (s *SingleStore) Connect() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		s.config.User,
		s.config.Password,
		s.config.Host,
		s.config.Port,
		s.config.Database,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping server: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the connection
func (s *SingleStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListTables retrieves all table names in the configured database
func (s *SingleStore) ListTables() ([]string, error) {
	query := "SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME"
	rows, err := s.db.Query(query, s.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// ShowCreateTable returns the engine's literal CREATE TABLE text for an
// existing table. The result feeds the reflection parser unchanged.
func (s *SingleStore) ShowCreateTable(tableName string) (string, error) {
	quoted := "`" + tableName + "`"
	var name, ddl string
	err := s.db.QueryRow("SHOW CREATE TABLE " + quoted).Scan(&name, &ddl)
	if err != nil {
		return "", fmt.Errorf("failed to fetch DDL for %s: %w", tableName, err)
	}
	return ddl, nil
}
