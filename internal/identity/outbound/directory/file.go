package directory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

// File keeps the directory in a local JSON file. Writes go to a temp file
// that replaces the original, so readers never see a partial document.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) FindUserByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, err := f.load()
	if err != nil {
		return nil, err
	}

	user, ok := findByEmail(users, email)
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &user, nil
}

func (f *File) CreateUser(_ context.Context, user entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := findByEmail(users, user.Email); ok {
		return goerror.ErrConflict
	}

	return f.save(append(users, user))
}

func (f *File) load() ([]entity.User, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", f.path, err)
	}

	users, err := decodeUsers(data)
	if err != nil {
		return nil, fmt.Errorf("directory: decode %s: %w", f.path, err)
	}
	return users, nil
}

func (f *File) save(users []entity.User) error {
	data, err := encodeUsers(users)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("directory: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+"-*")
	if err != nil {
		return fmt.Errorf("directory: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("directory: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("directory: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("directory: close temp: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("directory: replace %s: %w", f.path, err)
	}
	return nil
}
