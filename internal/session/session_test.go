package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellegy/softia/internal/store"
)

func TestRegistry_Lifecycle(t *testing.T) {
	r := NewRegistry()

	sess := r.Create("ada", []store.Message{{Role: store.RoleUser, Content: "hola"}})
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "ada", sess.Username)
	assert.Same(t, sess, r.Get(sess.ID))

	r.Destroy(sess.ID)
	assert.Nil(t, r.Get(sess.ID))
}

func TestRegistry_GuestSession(t *testing.T) {
	r := NewRegistry()
	sess := r.Create("", nil)
	assert.True(t, sess.IsGuest())
}

func TestSession_MessagesAreCopied(t *testing.T) {
	r := NewRegistry()
	sess := r.Create("ada", nil)

	sess.Append(store.Message{Role: store.RoleUser, Content: "uno"})
	snapshot := sess.Messages()
	sess.Append(store.Message{Role: store.RoleAssistant, Content: "dos"})

	assert.Len(t, snapshot, 1)
	assert.Len(t, sess.Messages(), 2)
}

func TestSession_SeededHistoryIsIndependent(t *testing.T) {
	history := []store.Message{{Role: store.RoleUser, Content: "antes"}}
	r := NewRegistry()
	sess := r.Create("ada", history)

	sess.Append(store.Message{Role: store.RoleAssistant, Content: "después"})
	assert.Len(t, history, 1)
	assert.Len(t, sess.Messages(), 2)
}

func TestSession_DuplicateFileNameIgnored(t *testing.T) {
	r := NewRegistry()
	sess := r.Create("", nil)

	sess.AddFile(store.UserFile{Name: "a.png", Content: store.FileContent{Kind: store.KindImage, Text: "uno"}})
	sess.AddFile(store.UserFile{Name: "a.png", Content: store.FileContent{Kind: store.KindImage, Text: "dos"}})

	files := sess.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "uno", files[0].Content.Text)
}
