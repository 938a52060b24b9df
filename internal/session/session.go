// Package session holds per-connection conversation state. Each login,
// registration, or guest entry creates an explicit session object that is
// destroyed at logout; nothing about the active conversation lives in
// process-global state.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/daniellegy/softia/internal/store"
)

// Session is the transient state of one signed-in (or guest) conversation.
// Username is empty for guests. Messages mirrors the active user's persisted
// history; for guests it is the only copy and is discarded at logout. Files
// buffers guest uploads, which are never persisted.
type Session struct {
	ID       string
	Username string

	mu       sync.Mutex
	messages []store.Message
	files    []store.UserFile
}

func (s *Session) IsGuest() bool {
	return s.Username == ""
}

// Messages returns a copy of the conversation buffer.
func (s *Session) Messages() []store.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Append(msg store.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Files returns a copy of the guest upload buffer.
func (s *Session) Files() []store.UserFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.UserFile, len(s.files))
	copy(out, s.files)
	return out
}

// AddFile buffers an upload, ignoring duplicate names (first write wins,
// same rule as the persistent store).
func (s *Session) AddFile(file store.UserFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.files {
		if existing.Name == file.Name {
			return
		}
	}
	s.files = append(s.files, file)
}

// Registry tracks live sessions by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create starts a session for username (empty for a guest) seeded with the
// given history.
func (r *Registry) Create(username string, history []store.Message) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Username: username,
		messages: append([]store.Message(nil), history...),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Destroy drops the session; guest state is gone for good.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
