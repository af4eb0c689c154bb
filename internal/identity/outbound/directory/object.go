package directory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/storage"
)

// Object keeps the directory document in object storage (S3, MinIO, GCS).
// Writes are serialized within this process only; run a single writer.
type Object struct {
	store  storage.Storage
	bucket string
	key    string
	mu     sync.Mutex
}

func NewObject(store storage.Storage, bucket, key string) *Object {
	if key == "" {
		key = "users.json"
	}
	return &Object{store: store, bucket: bucket, key: key}
}

func (o *Object) FindUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	users, err := o.load(ctx)
	if err != nil {
		return nil, err
	}

	user, ok := findByEmail(users, email)
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &user, nil
}

func (o *Object) CreateUser(ctx context.Context, user entity.User) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	users, err := o.load(ctx)
	if err != nil {
		return err
	}

	if _, ok := findByEmail(users, user.Email); ok {
		return goerror.ErrConflict
	}

	data, err := encodeUsers(append(users, user))
	if err != nil {
		return err
	}

	if _, err := o.store.PutObject(ctx, o.bucket, o.key, bytes.NewReader(data), storage.PutOptions{
		Size:        int64(len(data)),
		ContentType: "application/json",
	}); err != nil {
		return fmt.Errorf("directory: put %s/%s: %w", o.bucket, o.key, err)
	}
	return nil
}

func (o *Object) load(ctx context.Context) ([]entity.User, error) {
	rc, _, err := o.store.GetObject(ctx, o.bucket, o.key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory: get %s/%s: %w", o.bucket, o.key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s/%s: %w", o.bucket, o.key, err)
	}

	users, err := decodeUsers(data)
	if err != nil {
		return nil, fmt.Errorf("directory: decode %s/%s: %w", o.bucket, o.key, err)
	}
	return users, nil
}
