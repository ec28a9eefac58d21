package database

import (
	"fmt"
	"os"
)

// Config holds connection settings for a SingleStoreDB cluster
type Config struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// Executor is what the reflection layer consumes: a way to list tables and
// fetch their SHOW CREATE TABLE text. The DDL core never performs I/O
// itself; callers wire an Executor in.
type Executor interface {
	ListTables() ([]string, error)
	ShowCreateTable(tableName string) (string, error)
}

// LoadConfigFromEnv loads connection configuration from environment variables
func LoadConfigFromEnv() (Config, error) {
	host := os.Getenv("S2_HOST")
	if host == "" {
		host = "localhost"
	}

	database := os.Getenv("S2_DATABASE")
	if database == "" {
		return Config{}, fmt.Errorf("S2_DATABASE environment variable is required")
	}

	port := os.Getenv("S2_PORT")
	if port == "" {
		port = "3306"
	}

	return Config{
		Host:     host,
		Port:     port,
		Database: database,
		User:     os.Getenv("S2_USER"),
		Password: os.Getenv("S2_PASSWORD"),
	}, nil
}
