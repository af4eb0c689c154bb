package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpauth/internal/identity/inbound"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/directory"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/email"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/mq"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/store"
	"github.com/shandysiswandi/otpauth/internal/identity/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"github.com/shandysiswandi/otpauth/internal/pkg/messaging"
	"github.com/shandysiswandi/otpauth/internal/pkg/otp"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
	"github.com/shandysiswandi/otpauth/internal/pkg/schedule"
	"github.com/shandysiswandi/otpauth/internal/pkg/storage"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
)

var (
	ErrRedisRequired    = errors.New("identity: store driver redis needs a cache connection")
	ErrDatabaseRequired = errors.New("identity: directory driver postgres needs a database connection")
	ErrStorageRequired  = errors.New("identity: directory driver object needs a storage")
	ErrUnknownDriver    = errors.New("identity: unknown driver")
)

type Dependency struct {
	// DBConn and CacheConn are optional; only the postgres directory and
	// redis store drivers need them.
	DBConn    *pgxpool.Pool
	CacheConn redis.UniversalClient
	Storage   storage.Storage

	Router     *router.Router             `validate:"required"`
	Scheduler  *schedule.CronScheduler    `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	TokenID    uid.StringID               `validate:"required"`
	UserID     uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ucDep := usecase.Dependency{
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		RepoEmail:     email.New(dep.Mail, dep.Instrument),
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		OTP:           dep.OTP,
		TokenID:       dep.TokenID,
		UserID:        dep.UserID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	}

	if err := withStore(dep, &ucDep); err != nil {
		return err
	}
	if err := withDirectory(ctx, dep, &ucDep); err != nil {
		return err
	}

	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return inbound.RegisterJob(dep.Scheduler, uc, dep.Config.GetString("modules.identity.janitor_spec"))
}

func withStore(dep Dependency, ucDep *usecase.Dependency) error {
	driver := dep.Config.GetString("modules.identity.store.driver")
	slog.Info("identity store selected", "driver", driver)

	switch driver {
	case "", "memory":
		ucDep.RepoStore = store.NewMemory()
	case "redis":
		if dep.CacheConn == nil {
			return ErrRedisRequired
		}
		prefix := dep.Config.GetString("modules.identity.store.prefix")
		if prefix == "" {
			prefix = "otpauth"
		}
		ucDep.RepoStore = store.NewRedis(dep.CacheConn, prefix, dep.Instrument)
	default:
		return fmt.Errorf("%w: store %q", ErrUnknownDriver, driver)
	}

	return nil
}

func withDirectory(ctx context.Context, dep Dependency, ucDep *usecase.Dependency) error {
	driver := dep.Config.GetString("modules.identity.directory.driver")
	slog.Info("identity directory selected", "driver", driver)

	switch driver {
	case "", "file":
		path := dep.Config.GetString("modules.identity.directory.path")
		if path == "" {
			path = "users.json"
		}
		ucDep.RepoDirectory = directory.NewFile(path)
	case "object":
		if dep.Storage == nil {
			return ErrStorageRequired
		}
		ucDep.RepoDirectory = directory.NewObject(
			dep.Storage,
			dep.Config.GetString("modules.identity.directory.bucket"),
			dep.Config.GetString("modules.identity.directory.key"),
		)
	case "postgres":
		if dep.DBConn == nil {
			return ErrDatabaseRequired
		}
		pg := directory.NewPostgres(dep.DBConn, dep.Instrument)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		ucDep.RepoDirectory = pg
	default:
		return fmt.Errorf("%w: directory %q", ErrUnknownDriver, driver)
	}

	return nil
}
