package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/daniellegy/softia/internal/auth"
	"github.com/daniellegy/softia/internal/ingest"
	"github.com/daniellegy/softia/internal/session"
	"github.com/daniellegy/softia/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// ChatService orchestrates a conversation turn: session handling, upload
// ingestion, retrieval-augmented completion, and persistence of the
// resulting history.
type ChatService struct {
	users    *store.UserStore
	corpus   *store.CorpusStore
	ingester *ingest.Ingester
	gateway  *Gateway
	sessions *session.Registry
}

func NewChatService(users *store.UserStore, corpus *store.CorpusStore, ingester *ingest.Ingester, gateway *Gateway) *ChatService {
	return &ChatService{
		users:    users,
		corpus:   corpus,
		ingester: ingester,
		gateway:  gateway,
		sessions: session.NewRegistry(),
	}
}

// Register creates the user record and opens a session for it. Returns
// store.ErrUserExists when the username is taken; the existing record is
// left untouched.
func (s *ChatService) Register(username, password string) (*session.Session, error) {
	if err := s.users.CreateUser(username, auth.HashPassword(password)); err != nil {
		return nil, err
	}
	return s.sessions.Create(username, nil), nil
}

// Login verifies credentials and opens a session seeded with the user's
// persisted history.
func (s *ChatService) Login(username, password string) (*session.Session, error) {
	if !s.users.Authenticate(username, auth.HashPassword(password)) {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetUser(username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user after login: %w", err)
	}
	return s.sessions.Create(username, user.Messages), nil
}

// Guest opens an anonymous session. Nothing it accumulates is ever
// persisted.
func (s *ChatService) Guest() *session.Session {
	return s.sessions.Create("", nil)
}

func (s *ChatService) SessionByID(id string) *session.Session {
	return s.sessions.Get(id)
}

func (s *ChatService) Logout(sess *session.Session) {
	s.sessions.Destroy(sess.ID)
}

// Ask runs one conversation turn. The user message is appended to the
// session buffer before the model call; on success the assistant reply is
// appended too and, for signed-in users, the whole sequence is rewritten to
// durable storage. On failure the classified error is surfaced and nothing
// is persisted, so the prior history stays intact.
func (s *ChatService) Ask(ctx context.Context, sess *session.Session, question string) (string, error) {
	files, err := s.sessionFiles(sess)
	if err != nil {
		log.Printf("Failed to load files for %s, answering without them: %v", sessionLabel(sess), err)
		files = nil
	}

	history := sess.Messages()
	answer, err := s.gateway.Answer(ctx, question, history, files, s.corpus.Documents())

	sess.Append(store.Message{Role: store.RoleUser, Content: question})
	if err != nil {
		return "", err
	}
	sess.Append(store.Message{Role: store.RoleAssistant, Content: answer})

	if !sess.IsGuest() {
		if err := s.users.SaveMessages(sess.Username, sess.Messages()); err != nil {
			// The turn succeeded; losing the write only costs durability
			// of this exchange.
			log.Printf("Failed to persist history for %s: %v", sess.Username, err)
		}
	}
	return answer, nil
}

// Upload ingests the binary and adds the result to the user's file set.
// Guest uploads live only in the session buffer.
func (s *ChatService) Upload(sess *session.Session, filename string, data []byte, contentType string) (store.UserFile, error) {
	content, err := s.ingester.Ingest(data, contentType)
	if err != nil {
		return store.UserFile{}, err
	}

	file := store.UserFile{Name: filename, Content: content}
	if sess.IsGuest() {
		sess.AddFile(file)
		return file, nil
	}
	if err := s.users.AddFile(sess.Username, file); err != nil {
		return store.UserFile{}, fmt.Errorf("failed to store file %s: %w", filename, err)
	}
	return file, nil
}

func (s *ChatService) History(sess *session.Session) []store.Message {
	return sess.Messages()
}

// FileNames lists the names in the session's file set.
func (s *ChatService) FileNames(sess *session.Session) ([]string, error) {
	files, err := s.sessionFiles(sess)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names, nil
}

// AddCorpusDocument writes the document and synchronously reloads the
// corpus snapshot.
func (s *ChatService) AddCorpusDocument(name, text string) error {
	return s.corpus.Add(name, text)
}

func (s *ChatService) CorpusNames() []string {
	docs := s.corpus.Documents()
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names
}

func (s *ChatService) sessionFiles(sess *session.Session) ([]store.UserFile, error) {
	if sess.IsGuest() {
		return sess.Files(), nil
	}
	user, err := s.users.GetUser(sess.Username)
	if err != nil {
		return nil, err
	}
	return user.Files, nil
}

func sessionLabel(sess *session.Session) string {
	if sess.IsGuest() {
		return "guest session " + sess.ID
	}
	return "user " + sess.Username
}
