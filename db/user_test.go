package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, otp bool) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewMySQLStore(&DB{Conn: conn}, otp), mock
}

const selectUser = "SELECT password, totp_secret FROM users WHERE username = ? ORDER BY id"

func TestMySQLStore_Register(t *testing.T) {
	s, mock := newMockStore(t, false)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password, totp_secret) VALUES (?, ?, ?)")).
		WithArgs("alice", sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user, err := s.Register(context.Background(), "alice", "Abcdefg1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, checkPassword(user.Password, "Abcdefg1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_RegisterInsertError(t *testing.T) {
	s, mock := newMockStore(t, true)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("boom"))

	_, err := s.Register(context.Background(), "alice", "Abcdefg1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMySQLStore_Authenticate(t *testing.T) {
	other, err := hashPassword("Other1234")
	require.NoError(t, err)
	match, err := hashPassword("Abcdefg1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		password string
		want     bool
	}{
		{
			name:     "match on second row",
			rows:     sqlmock.NewRows([]string{"password", "totp_secret"}).AddRow(other, "").AddRow(match, "SECRET"),
			password: "Abcdefg1",
			want:     true,
		},
		{
			name:     "wrong password",
			rows:     sqlmock.NewRows([]string{"password", "totp_secret"}).AddRow(match, ""),
			password: "Abcdefg2",
			want:     false,
		},
		{
			name:     "unknown user",
			rows:     sqlmock.NewRows([]string{"password", "totp_secret"}),
			password: "Abcdefg1",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t, false)
			mock.ExpectQuery(regexp.QuoteMeta(selectUser)).WithArgs("alice").WillReturnRows(tt.rows)

			user, ok, err := s.Authenticate(context.Background(), "alice", tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, "SECRET", user.TOTPSecret)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMySQLStore_AuthenticateQueryError(t *testing.T) {
	s, mock := newMockStore(t, false)
	mock.ExpectQuery(regexp.QuoteMeta(selectUser)).WillReturnError(errors.New("down"))

	_, ok, err := s.Authenticate(context.Background(), "alice", "Abcdefg1")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestDB_InitializeDB(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectPing()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).WillReturnResult(sqlmock.NewResult(0, 0))

	d := &DB{Conn: conn}
	require.NoError(t, d.InitializeDB(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
