package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T, otp bool) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "users.csv"), otp)
}

func TestFileStore_RegisterThenAuthenticate(t *testing.T) {
	s := newTestFileStore(t, false)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "Abcdefg1", user.Password)
	assert.Empty(t, user.TOTPSecret)

	got, ok, err := s.Authenticate(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	_, ok, err = s.Authenticate(ctx, "alice", "Abcdefg2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Authenticate(ctx, "Alice", "Abcdefg1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_FileLayout(t *testing.T) {
	s := newTestFileStore(t, false)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	_, err = s.Register(ctx, "bob", "Abcdefg1")
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "username,password", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "alice,$2"))
	assert.True(t, strings.HasPrefix(lines[2], "bob,$2"))
	assert.NotContains(t, string(data), "Abcdefg1")
}

func TestFileStore_MissingOrEmptyStore(t *testing.T) {
	s := newTestFileStore(t, false)
	ctx := context.Background()

	_, ok, err := s.Authenticate(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(s.Path(), []byte("username,password\n"), 0o600))
	_, ok, err = s.Authenticate(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_SharedPasswordNoCrossContamination(t *testing.T) {
	s := newTestFileStore(t, false)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "Shared123")
	require.NoError(t, err)
	_, err = s.Register(ctx, "bob", "Shared123")
	require.NoError(t, err)

	for _, name := range []string{"alice", "bob"} {
		got, ok, err := s.Authenticate(ctx, name, "Shared123")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, name, got.Username)
	}

	_, ok, err := s.Authenticate(ctx, "carol", "Shared123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_DuplicateUsernames(t *testing.T) {
	s := newTestFileStore(t, false)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "First1234")
	require.NoError(t, err)
	_, err = s.Register(ctx, "alice", "Second123")
	require.NoError(t, err)

	for _, pw := range []string{"First1234", "Second123"} {
		_, ok, err := s.Authenticate(ctx, "alice", pw)
		require.NoError(t, err)
		assert.True(t, ok, pw)
	}
}

func TestFileStore_OTPSecretStored(t *testing.T) {
	s := newTestFileStore(t, true)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	require.NotEmpty(t, user.TOTPSecret)

	got, ok, err := s.Authenticate(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.TOTPSecret, got.TOTPSecret)

	code, err := totp.GenerateCode(got.TOTPSecret, time.Now())
	require.NoError(t, err)
	assert.True(t, VerifyOTP(code, got.TOTPSecret))
	assert.False(t, VerifyOTP(code, ""))
}

func TestFileStore_ConcurrentRegister(t *testing.T) {
	s := newTestFileStore(t, false)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Register(ctx, "user"+string(rune('a'+i)), "Abcdefg1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "username,password", lines[0])
	for _, l := range lines[1:] {
		assert.Len(t, strings.Split(l, ","), 2)
	}
}

func TestFileStore_RegisterUnwritablePath(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing", "users.csv"), false)
	_, err := s.Register(context.Background(), "alice", "Abcdefg1")
	assert.Error(t, err)
}

func TestFileStore_RejectsDelimiterInUsername(t *testing.T) {
	s := newTestFileStore(t, false)
	_, err := s.Register(context.Background(), "a,b", "Abcdefg1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}
