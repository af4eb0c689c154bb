package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.verifiedToken(t, "a@x.com")

	// Act
	out, err := env.uc.Register(ctx, RegisterInput{Name: "  Alice ", Email: "a@x.com", Token: token})

	// Assert
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{16}$`, out.User.ID)
	assert.Equal(t, "Alice", out.User.Name)
	assert.Equal(t, "a@x.com", out.User.Email)
	assert.Equal(t, env.clock.Now(), out.User.CreatedAt)

	require.Len(t, env.directory.users, 1)
	assert.Equal(t, out.User, env.directory.users[0])

	require.Len(t, env.messaging.events, 1)
	assert.Equal(t, out.User.ID, env.messaging.events[0].UserID)
	assert.Equal(t, "a@x.com", env.messaging.events[0].Email)
}

func TestRegister_TokenIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.verifiedToken(t, "a@x.com")

	_, err := env.uc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Token: token})
	require.NoError(t, err)

	_, err = env.uc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Token: token})
	requireCode(t, err, goerror.CodePrecondition, "invalid or expired token")
}

func TestRegister_InvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		email string
		token func(env *testEnv) string
		setup func(env *testEnv)
	}{
		{
			name:  "unknown token",
			email: "a@x.com",
			token: func(*testEnv) string { return "deadbeef" },
		},
		{
			name:  "email differs",
			email: "b@x.com",
			token: func(env *testEnv) string { return env.verifiedToken(t, "a@x.com") },
		},
		{
			name:  "email differs only by case",
			email: "A@x.com",
			token: func(env *testEnv) string { return env.verifiedToken(t, "a@x.com") },
		},
		{
			name:  "expired token",
			email: "a@x.com",
			token: func(env *testEnv) string {
				tok := env.verifiedToken(t, "a@x.com")
				env.clock.Advance(901 * time.Second)
				return tok
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			token := tt.token(env)

			_, err := env.uc.Register(context.Background(), RegisterInput{Name: "Alice", Email: tt.email, Token: token})

			requireCode(t, err, goerror.CodePrecondition, "invalid or expired token")
			assert.Empty(t, env.directory.users)
		})
	}
}

func TestRegister_DuplicateEmailAnyCase(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.verifiedToken(t, "a@x.com")
	_, err := env.uc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Token: first})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	fresh := env.verifiedToken(t, "A@X.com")

	// Act
	_, err = env.uc.Register(ctx, RegisterInput{Name: "Alice Again", Email: "A@X.com", Token: fresh})

	// Assert
	requireCode(t, err, goerror.CodeConflict, "user exists")
	assert.Len(t, env.directory.users, 1)
}

func TestRegister_ConflictFromDirectory(t *testing.T) {
	env := newTestEnv(t)
	token := env.verifiedToken(t, "a@x.com")
	env.directory.createErr = goerror.ErrConflict

	_, err := env.uc.Register(context.Background(), RegisterInput{Name: "Alice", Email: "a@x.com", Token: token})

	requireCode(t, err, goerror.CodeConflict, "user exists")
}

func TestRegister_PersistenceFailureKeepsToken(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.verifiedToken(t, "a@x.com")
	env.directory.createErr = errBoom

	// Act
	_, err := env.uc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Token: token})

	// Assert
	requireCode(t, err, goerror.CodeInternal, "Internal server error")
	assert.Empty(t, env.messaging.events)

	env.directory.createErr = nil
	_, err = env.uc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Token: token})
	assert.NoError(t, err, "the token stays valid for a retry")
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	token := env.verifiedToken(t, "a@x.com")
	env.messaging.err = errBoom

	_, err := env.uc.Register(context.Background(), RegisterInput{Name: "Alice", Email: "a@x.com", Token: token})

	assert.NoError(t, err)
	assert.Len(t, env.directory.users, 1)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []RegisterInput{
		{Name: "", Email: "a@x.com", Token: "t"},
		{Name: "   ", Email: "a@x.com", Token: "t"},
		{Name: "Alice", Email: "", Token: "t"},
		{Name: "Alice", Email: "a@x.com", Token: ""},
	}
	for _, in := range tests {
		_, err := env.uc.Register(context.Background(), in)
		requireCode(t, err, goerror.CodeInvalidInput, "Validation error")
	}
}
