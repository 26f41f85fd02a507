package db

import (
	"context"
	"fmt"

	model "github.com/stenstromen/healthviz/model"
)

// MySQLStore keeps credentials in the users table.
type MySQLStore struct {
	db  *DB
	otp bool
}

func NewMySQLStore(db *DB, otp bool) *MySQLStore {
	return &MySQLStore{db: db, otp: otp}
}

func (s *MySQLStore) Register(ctx context.Context, username, password string) (model.Credential, error) {
	user, err := newCredential(username, password, s.otp)
	if err != nil {
		return model.Credential{}, err
	}

	_, err = s.db.Conn.ExecContext(ctx, "INSERT INTO users (username, password, totp_secret) VALUES (?, ?, ?)", user.Username, user.Password, user.TOTPSecret)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// Authenticate tries every row for username in insertion order.
func (s *MySQLStore) Authenticate(ctx context.Context, username, password string) (model.Credential, bool, error) {
	rows, err := s.db.Conn.QueryContext(ctx, "SELECT password, totp_secret FROM users WHERE username = ? ORDER BY id", username)
	if err != nil {
		return model.Credential{}, false, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user := model.Credential{Username: username}
		if err := rows.Scan(&user.Password, &user.TOTPSecret); err != nil {
			return model.Credential{}, false, fmt.Errorf("database error: %w", err)
		}
		if checkPassword(user.Password, password) {
			return user, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return model.Credential{}, false, fmt.Errorf("database error: %w", err)
	}

	return model.Credential{}, false, nil
}

func newCredential(username, password string, otp bool) (model.Credential, error) {
	if err := ValidateUsername(username); err != nil {
		return model.Credential{}, err
	}
	user := model.Credential{Username: username}

	hashed, err := hashPassword(password)
	if err != nil {
		return model.Credential{}, err
	}
	user.Password = hashed

	if otp {
		secret, err := newTOTPSecret(username)
		if err != nil {
			return model.Credential{}, err
		}
		user.TOTPSecret = secret
	}

	return user, nil
}
