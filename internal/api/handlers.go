package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/daniellegy/softia/internal/auth"
	"github.com/daniellegy/softia/internal/core"
	"github.com/daniellegy/softia/internal/ingest"
	"github.com/daniellegy/softia/internal/session"
	"github.com/daniellegy/softia/internal/store"
)

// maxUploadBytes bounds a single file upload (32 MiB).
const maxUploadBytes = 32 << 20

type sessionKey struct{}

type APIHandler struct {
	chatService *core.ChatService
}

func NewAPIHandler(cs *core.ChatService) *APIHandler {
	return &APIHandler{chatService: cs}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		sessionID, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		sess := h.chatService.SessionByID(sessionID)
		if sess == nil {
			// Token is valid but the session was logged out or the
			// process restarted.
			http.Error(w, "Session expired, please log in again", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestSession(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	sess, err := h.chatService.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			http.Error(w, "User already exists", http.StatusConflict)
			return
		}
		log.Printf("Error registering user %s: %v", req.Username, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	h.writeToken(w, sess, http.StatusCreated)
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	sess, err := h.chatService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Printf("Error logging in user %s: %v", req.Username, err)
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	h.writeToken(w, sess, http.StatusOK)
}

func (h *APIHandler) GuestHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.chatService.Guest()
	h.writeToken(w, sess, http.StatusOK)
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.chatService.Logout(requestSession(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) writeToken(w http.ResponseWriter, sess *session.Session, status int) {
	token, err := auth.GenerateJWT(sess.ID)
	if err != nil {
		log.Printf("Error generating JWT for session %s: %v", sess.ID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(TokenResponse{Token: token, Username: sess.Username})
}

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	sess := requestSession(r)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "Question cannot be empty", http.StatusBadRequest)
		return
	}

	answer, err := h.chatService.Ask(r.Context(), sess, req.Question)
	if err != nil {
		if errors.Is(err, core.ErrNetwork) {
			log.Printf("Network failure answering for %s: %v", sess.ID, err)
			http.Error(w, "No se pudo contactar al servicio de IA. Revisa tu conexión.", http.StatusServiceUnavailable)
			return
		}
		log.Printf("Gateway failure answering for %s: %v", sess.ID, err)
		http.Error(w, "El servicio de IA devolvió un error. Intenta de nuevo.", http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(ChatResponse{Answer: answer})
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	messages := h.chatService.History(requestSession(r))
	if messages == nil {
		messages = []store.Message{}
	}
	json.NewEncoder(w).Encode(messages)
}

type UploadResponse struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Degraded bool   `json:"degraded,omitempty"`
}

func (h *APIHandler) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	sess := requestSession(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	file, err := h.chatService.Upload(sess, filepath.Base(header.Filename), data, contentType)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedType) {
			http.Error(w, "Unsupported file type: "+contentType, http.StatusUnsupportedMediaType)
			return
		}
		log.Printf("Failed to ingest upload %s for %s: %v", header.Filename, sess.ID, err)
		http.Error(w, "Could not extract text from the uploaded file", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadResponse{
		Name:     file.Name,
		Kind:     file.Content.Kind,
		Degraded: file.Content.Degraded,
	})
}

func (h *APIHandler) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	sess := requestSession(r)
	names, err := h.chatService.FileNames(sess)
	if err != nil {
		log.Printf("Failed to list files for %s: %v", sess.ID, err)
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	json.NewEncoder(w).Encode(names)
}

type AddCorpusRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func (h *APIHandler) AddCorpusHandler(w http.ResponseWriter, r *http.Request) {
	var req AddCorpusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Text == "" {
		http.Error(w, "Name and text are required", http.StatusBadRequest)
		return
	}

	if err := h.chatService.AddCorpusDocument(req.Name, req.Text); err != nil {
		log.Printf("Failed to add corpus document %s: %v", req.Name, err)
		http.Error(w, "Failed to store corpus document", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *APIHandler) ListCorpusHandler(w http.ResponseWriter, r *http.Request) {
	names := h.chatService.CorpusNames()
	if names == nil {
		names = []string{}
	}
	json.NewEncoder(w).Encode(names)
}
