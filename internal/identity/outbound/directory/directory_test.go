package directory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type directory interface {
	FindUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user entity.User) error
}

func runDirectoryContract(t *testing.T, d directory) {
	t.Helper()
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	t.Run("missing user", func(t *testing.T) {
		_, err := d.FindUserByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("create and find case-insensitively", func(t *testing.T) {
		alice := entity.User{ID: "0123456789abcdef", Name: "Alice", Email: "Alice@X.com", CreatedAt: createdAt}
		require.NoError(t, d.CreateUser(ctx, alice))

		got, err := d.FindUserByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, "Alice@X.com", got.Email)
		assert.True(t, createdAt.Equal(got.CreatedAt))
	})

	t.Run("duplicate email in any case conflicts", func(t *testing.T) {
		err := d.CreateUser(ctx, entity.User{ID: "fedcba9876543210", Name: "Other", Email: "ALICE@x.COM", CreatedAt: createdAt})
		assert.ErrorIs(t, err, goerror.ErrConflict)
	})

	t.Run("concurrent registrations keep one winner", func(t *testing.T) {
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			created   int
			conflicts int
		)
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := d.CreateUser(ctx, entity.User{
					ID:        "race" + string(rune('a'+i)),
					Name:      "Racer",
					Email:     "race@x.com",
					CreatedAt: createdAt,
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case assert.ErrorIs(t, err, goerror.ErrConflict):
					conflicts++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, 7, conflicts)
	})
}
