package database

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"carwash_backend/pkg/utils"
)

//go:embed schema.sql
var schemaSQL string

// InitDB opens and pings the connection pool and, when asked, applies the schema.
func InitDB(dsn string, applySchema bool) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	utils.LogInfo("Successfully connected to the database")

	if applySchema {
		if err := ApplySchema(conn); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

// ApplySchema runs the embedded, idempotent schema script.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied successfully")
	return nil
}
