package store

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	KindText  = "text"
	KindImage = "image"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FileContent is the processed text extracted from an uploaded binary.
// Degraded marks OCR output that was substituted with a sentinel rather
// than recognized from the image.
type FileContent struct {
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	Degraded bool   `json:"degraded,omitempty"`
}

type UserFile struct {
	Name    string      `json:"name"`
	Content FileContent `json:"content"`
}

// User is the persisted per-username record. The whole record is the unit
// of storage: saves always rewrite it in full.
type User struct {
	Username     string     `json:"-"`
	PasswordHash string     `json:"password_hash"`
	Messages     []Message  `json:"messages"`
	Files        []UserFile `json:"files"`
}

// CorpusDocument is one shared reference text, named after the source file.
type CorpusDocument struct {
	Name string `json:"name"`
	Text string `json:"text"`
}
