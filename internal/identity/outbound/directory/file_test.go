package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	runDirectoryContract(t, NewFile(filepath.Join(t.TempDir(), "data", "users.json")))
}

func TestFile_DocumentFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	f := NewFile(path)

	err := f.CreateUser(context.Background(), entity.User{
		ID:        "0123456789abcdef",
		Name:      "Alice",
		Email:     "a@x.com",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"0123456789abcdef","name":"Alice","email":"a@x.com","createdAt":"2026-01-02T03:04:05Z"}]`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFile_ReadsExistingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","name":"Bob","email":"bob@x.com","createdAt":"2025-05-05T00:00:00Z"}]`), 0o600))

	got, err := NewFile(path).FindUserByEmail(context.Background(), "BOB@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	f := NewFile(path)
	_, err := f.FindUserByEmail(context.Background(), "a@x.com")
	assert.Error(t, err)

	err = f.CreateUser(context.Background(), entity.User{ID: "1", Email: "a@x.com"})
	assert.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(data), "a failed write must leave the document untouched")
}
