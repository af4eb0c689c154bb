package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpired(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.verifiedToken(t, "old@x.com")
	require.NoError(t, env.uc.SendOTP(ctx, SendOTPInput{Email: "old@x.com"}))

	env.clock.Advance(600 * time.Second)
	require.NoError(t, env.uc.SendOTP(ctx, SendOTPInput{Email: "new@x.com"}))

	env.clock.Advance(301 * time.Second)
	require.NoError(t, env.uc.SendOTP(ctx, SendOTPInput{Email: "fresh@x.com"}))

	// Act
	err := env.uc.SweepExpired(ctx)

	// Assert
	require.NoError(t, err)

	_, err = env.store.GetChallenge(ctx, "old@x.com")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	_, err = env.store.GetChallenge(ctx, "new@x.com")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	_, err = env.store.GetChallenge(ctx, "fresh@x.com")
	assert.NoError(t, err)

	_, err = env.uc.Register(ctx, RegisterInput{Name: "Old", Email: "old@x.com", Token: token})
	requireCode(t, err, goerror.CodePrecondition, "invalid or expired token")
}
