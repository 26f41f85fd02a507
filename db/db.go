package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/stenstromen/healthviz/model"
)

// Store is the credential store behind login and registration.
type Store interface {
	Register(ctx context.Context, username, password string) (model.Credential, error)
	Authenticate(ctx context.Context, username, password string) (model.Credential, bool, error)
}

type DB struct {
	Conn *sql.DB
}

func New(dsn string) (*DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{Conn: db}, nil
}

func (db *DB) ConnectionCheck(ctx context.Context) error {
	if err := db.Conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (db *DB) InitializeDB(ctx context.Context) error {
	if err := db.ConnectionCheck(ctx); err != nil {
		return err
	}

	createTableSQL := `
    CREATE TABLE IF NOT EXISTS users (
        id INT AUTO_INCREMENT PRIMARY KEY,
        username VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		totp_secret VARCHAR(255) NOT NULL DEFAULT '',
		INDEX idx_users_username (username)
    );`

	if _, err := db.Conn.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}
