package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	sqlCreateTable = `CREATE TABLE IF NOT EXISTS directory_users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	sqlCreateEmailIndex = `CREATE UNIQUE INDEX IF NOT EXISTS directory_users_email_lower_key
	ON directory_users (lower(email))`

	sqlFindUserByEmail = `SELECT id, name, email, created_at
	FROM directory_users
	WHERE lower(email) = lower($1)`

	sqlInsertUser = `INSERT INTO directory_users (id, name, email, created_at)
	VALUES ($1, $2, $3, $4)`
)

// Postgres keeps users in the directory_users table. Email uniqueness is
// enforced by a unique index on lower(email).
type Postgres struct {
	conn pgxConn
	ins  instrument.Instrumentation
}

func NewPostgres(conn pgxConn, ins instrument.Instrumentation) *Postgres {
	return &Postgres{conn: conn, ins: ins}
}

// EnsureSchema creates the table and index when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.conn.Exec(ctx, sqlCreateTable); err != nil {
		return err
	}
	_, err := p.conn.Exec(ctx, sqlCreateEmailIndex)
	return err
}

// - 23505 unique violation → goerror.ErrConflict
func (p *Postgres) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (p *Postgres) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return p.ins.Tracer("identity.outbound.directory").Start(ctx, name)
}

func (p *Postgres) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (p *Postgres) FindUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := p.startSpan(ctx, "FindUserByEmail")
	defer func() { p.endSpan(span, err) }()

	var u entity.User
	err = p.conn.QueryRow(ctx, sqlFindUserByEmail, email).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, p.mapError(err)
	}

	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, user entity.User) (err error) {
	ctx, span := p.startSpan(ctx, "CreateUser")
	defer func() { p.endSpan(span, err) }()

	_, err = p.conn.Exec(ctx, sqlInsertUser, user.ID, user.Name, user.Email, user.CreatedAt)
	err = p.mapError(err)
	return err
}
