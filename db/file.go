package db

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	model "github.com/stenstromen/healthviz/model"
)

const fileHeader = "username,password"

// FileStore keeps credentials in a flat comma-separated file, one record per
// line under a "username,password" header. A third field holds the TOTP
// secret when one was issued.
//
// Appends from this process are serialized; other processes writing the same
// file are not coordinated with.
type FileStore struct {
	path string
	otp  bool
	mu   sync.Mutex
}

func NewFileStore(path string, otp bool) *FileStore {
	return &FileStore{path: path, otp: otp}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Register(ctx context.Context, username, password string) (model.Credential, error) {
	user, err := newCredential(username, password, s.otp)
	if err != nil {
		return model.Credential{}, err
	}

	line := user.Username + "," + user.Password
	if user.TOTPSecret != "" {
		line += "," + user.TOTPSecret
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.append(line); err != nil {
		return model.Credential{}, err
	}
	return user, nil
}

func (s *FileStore) append(line string) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open credential file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat credential file: %w", err)
	}

	var b strings.Builder
	if st.Size() == 0 {
		b.WriteString(fileHeader + "\n")
	}
	b.WriteString(line + "\n")

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// Authenticate scans the whole file; the first row matching both username and
// password wins.
func (s *FileStore) Authenticate(ctx context.Context, username, password string) (model.Credential, bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Credential{}, false, nil
		}
		return model.Credential{}, false, fmt.Errorf("failed to open credential file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if first {
			first = false
			if line == fileHeader {
				continue
			}
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 2 || fields[0] != username {
			continue
		}
		if !checkPassword(fields[1], password) {
			continue
		}

		user := model.Credential{Username: fields[0], Password: fields[1]}
		if len(fields) > 2 {
			user.TOTPSecret = fields[2]
		}
		return user, true, nil
	}
	if err := sc.Err(); err != nil {
		return model.Credential{}, false, fmt.Errorf("failed to read credential file: %w", err)
	}

	return model.Credential{}, false, nil
}
