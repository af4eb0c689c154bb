package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpauth/internal/identity"
	"github.com/shandysiswandi/otpauth/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.identity.enabled") {
		if err := identity.New(a.ctx, identity.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Storage:    a.storage,
			Router:     a.router,
			Scheduler:  a.scheduler,
			Messaging:  a.messaging,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			TokenID:    a.tokenID,
			UserID:     a.userID,
			HMAC:       a.hmac,
			Clock:      a.clock,
			OTP:        a.otp,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(a.ctx, notification.Dependency{
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Mail:       a.mail,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
