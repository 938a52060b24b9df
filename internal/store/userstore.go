package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UserStore persists one JSON record per username under a base directory.
// Writers to the same username are serialized in-process so the
// read-modify-write of a record cannot interleave.
type UserStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUserStore(dir string) (*UserStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create users directory: %w", err)
	}
	return &UserStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// userLock returns the per-username mutex, creating it on first use.
func (s *UserStore) userLock(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[username]
	if !ok {
		l = &sync.Mutex{}
		s.locks[username] = l
	}
	return l
}

func (s *UserStore) userPath(username string) string {
	return filepath.Join(s.dir, username+".json")
}

func (s *UserStore) CreateUser(username, passwordHash string) error {
	lock := s.userLock(username)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(s.userPath(username)); err == nil {
		return ErrUserExists
	}

	user := &User{
		Username:     username,
		PasswordHash: passwordHash,
		Messages:     []Message{},
		Files:        []UserFile{},
	}
	return s.write(user)
}

// GetUser loads the full record for username. Returns ErrUserNotFound when
// no record file exists.
func (s *UserStore) GetUser(username string) (*User, error) {
	data, err := os.ReadFile(s.userPath(username))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read user record: %w", err)
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user record %s: %w", username, err)
	}
	user.Username = username
	return &user, nil
}

// Authenticate compares the stored digest against the supplied one. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *UserStore) Authenticate(username, passwordHash string) bool {
	user, err := s.GetUser(username)
	if err != nil {
		return false
	}
	return user.PasswordHash == passwordHash
}

// SaveMessages replaces the user's entire message sequence. Save is
// "rewrite the whole sequence", never append, so callers must pass the
// complete in-memory history.
func (s *UserStore) SaveMessages(username string, messages []Message) error {
	lock := s.userLock(username)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.GetUser(username)
	if err != nil {
		return err
	}
	user.Messages = messages
	return s.write(user)
}

// AddFile appends a file to the user's collection unless the name is already
// taken; duplicates are a silent no-op (first write wins).
func (s *UserStore) AddFile(username string, file UserFile) error {
	lock := s.userLock(username)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.GetUser(username)
	if err != nil {
		return err
	}
	for _, existing := range user.Files {
		if existing.Name == file.Name {
			return nil
		}
	}
	user.Files = append(user.Files, file)
	return s.write(user)
}

func (s *UserStore) write(user *User) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}
	if err := atomicWriteFile(s.userPath(user.Username), data, 0o644); err != nil {
		return fmt.Errorf("failed to write user record %s: %w", user.Username, err)
	}
	return nil
}
