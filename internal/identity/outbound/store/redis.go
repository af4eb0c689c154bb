package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Keys outlive their expiry by this long so a late verify still reports
// "expired" instead of "no challenge", like an entry waiting for the janitor.
const redisRetention = time.Minute

const (
	fieldCode      = "code"
	fieldEmail     = "email"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"
)

// incrementAttempts never recreates a challenge deleted by a concurrent call.
var incrementAttempts = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
`)

// consumeChallenge deletes the challenge only while it still carries the
// given code: -1 missing, 0 mismatch, 1 consumed.
var consumeChallenge = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], ARGV[1])
if not code then
	return -1
end
if code ~= ARGV[2] then
	return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

// Redis stores challenges and sessions as hashes so several instances can
// share them. Keys expire natively, so sweeping is a no-op.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ins    instrument.Instrumentation
}

func NewRedis(client redis.UniversalClient, prefix string, ins instrument.Instrumentation) *Redis {
	if prefix == "" {
		prefix = "otpauth"
	}
	return &Redis{client: client, prefix: prefix, ins: ins}
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("identity.outbound.store").Start(ctx, name)
}

func (r *Redis) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *Redis) challengeKey(email string) string {
	return r.prefix + ":challenge:" + email
}

func (r *Redis) sessionKey(token string) string {
	return r.prefix + ":session:" + token
}

func (r *Redis) GetChallenge(ctx context.Context, email string) (_ *entity.Challenge, err error) {
	ctx, span := r.startSpan(ctx, "GetChallenge")
	defer func() { r.endSpan(span, err) }()

	vals, err := r.client.HGetAll(ctx, r.challengeKey(email)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, goerror.ErrNotFound
	}

	expiresAt, err := parseMillis(vals[fieldExpiresAt])
	if err != nil {
		return nil, err
	}
	attempts, err := strconv.Atoi(vals[fieldAttempts])
	if err != nil {
		return nil, err
	}

	return &entity.Challenge{
		Email:     email,
		Code:      vals[fieldCode],
		ExpiresAt: expiresAt,
		Attempts:  attempts,
	}, nil
}

func (r *Redis) PutChallenge(ctx context.Context, c entity.Challenge) (err error) {
	ctx, span := r.startSpan(ctx, "PutChallenge")
	defer func() { r.endSpan(span, err) }()

	key := r.challengeKey(c.Email)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldCode, c.Code,
			fieldExpiresAt, c.ExpiresAt.UnixMilli(),
			fieldAttempts, c.Attempts,
		)
		pipe.PExpireAt(ctx, key, c.ExpiresAt.Add(redisRetention))
		return nil
	})
	return err
}

func (r *Redis) IncrementAttempts(ctx context.Context, email string) (_ int, err error) {
	ctx, span := r.startSpan(ctx, "IncrementAttempts")
	defer func() { r.endSpan(span, err) }()

	n, err := incrementAttempts.Run(ctx, r.client, []string{r.challengeKey(email)}, fieldAttempts).Int()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, goerror.ErrNotFound
	}
	return n, nil
}

func (r *Redis) DeleteChallenge(ctx context.Context, email string) (_ bool, err error) {
	ctx, span := r.startSpan(ctx, "DeleteChallenge")
	defer func() { r.endSpan(span, err) }()

	n, err := r.client.Del(ctx, r.challengeKey(email)).Result()
	return n > 0, err
}

func (r *Redis) ConsumeChallenge(ctx context.Context, email, code string) (_ bool, err error) {
	ctx, span := r.startSpan(ctx, "ConsumeChallenge")
	defer func() { r.endSpan(span, err) }()

	n, err := consumeChallenge.Run(ctx, r.client, []string{r.challengeKey(email)}, fieldCode, code).Int()
	if err != nil {
		return false, err
	}
	if n < 0 {
		return false, goerror.ErrNotFound
	}
	return n == 1, nil
}

func (r *Redis) SweepChallenges(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (r *Redis) GetSession(ctx context.Context, token string) (_ *entity.Session, err error) {
	ctx, span := r.startSpan(ctx, "GetSession")
	defer func() { r.endSpan(span, err) }()

	vals, err := r.client.HGetAll(ctx, r.sessionKey(token)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, goerror.ErrNotFound
	}

	expiresAt, err := parseMillis(vals[fieldExpiresAt])
	if err != nil {
		return nil, err
	}

	return &entity.Session{Token: token, Email: vals[fieldEmail], ExpiresAt: expiresAt}, nil
}

func (r *Redis) PutSession(ctx context.Context, s entity.Session) (err error) {
	ctx, span := r.startSpan(ctx, "PutSession")
	defer func() { r.endSpan(span, err) }()

	key := r.sessionKey(s.Token)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldEmail, s.Email, fieldExpiresAt, s.ExpiresAt.UnixMilli())
		pipe.PExpireAt(ctx, key, s.ExpiresAt.Add(redisRetention))
		return nil
	})
	return err
}

func (r *Redis) DeleteSession(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := r.startSpan(ctx, "DeleteSession")
	defer func() { r.endSpan(span, err) }()

	n, err := r.client.Del(ctx, r.sessionKey(token)).Result()
	return n > 0, err
}

func (r *Redis) SweepSessions(context.Context, time.Time) (int, error) {
	return 0, nil
}

func parseMillis(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
