package app

// configDefaults apply when neither the file nor the environment sets a key.
var configDefaults = map[string]any{
	"app.server.http.port":                        8080,
	"app.server.http.read_timeout_seconds":        10,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       15,
	"app.server.http.idle_timeout_seconds":        60,
	"app.server.max_goroutine":                    100,
	"app.server.cors":                             "*",

	"instrument.service_name":    "otpauth",
	"instrument.service_version": "1.0.0",
	"instrument.env":             "local",
	"instrument.log_level":       "info",
	"instrument.log_mask_fields": "code,token,x-auth-token,password",

	"database.connect_attempts": 5,
	"redis.connect_attempts":    5,

	"mail.driver":          "smtp",
	"mail.port":            587,
	"mail.from_name":       "OTP Auth",
	"mail.timeout_seconds": 15,

	"storage.driver":   "memory",
	"messaging.driver": "memory",

	"messaging.kafka.retry_backoff_ms": 200,

	"modules.identity.enabled":                      true,
	"modules.identity.otp_ttl_seconds":              300,
	"modules.identity.otp_resend_threshold_seconds": 250,
	"modules.identity.otp_max_attempts":             6,
	"modules.identity.token_ttl_seconds":            900,
	"modules.identity.janitor_spec":                 "@every 60s",
	"modules.identity.store.driver":                 "memory",
	"modules.identity.store.prefix":                 "otpauth",
	"modules.identity.directory.driver":             "file",
	"modules.identity.directory.path":               "users.json",
	"modules.identity.directory.key":                "users.json",

	"modules.notification.enabled":      true,
	"modules.notification.concurrency":  1,
	"modules.notification.max_attempts": 5,
}

// configEnvBindings keep the short variable names deployments already use.
var configEnvBindings = map[string][]string{
	"mail.host":                          {"SMTP_HOST", "MAIL_HOST"},
	"mail.port":                          {"SMTP_PORT", "MAIL_PORT"},
	"mail.username":                      {"SMTP_USER", "MAIL_USERNAME"},
	"mail.password":                      {"SMTP_PASS", "MAIL_PASSWORD"},
	"mail.from_name":                     {"FROM_NAME", "MAIL_FROM_NAME"},
	"mail.from_email":                    {"FROM_EMAIL", "MAIL_FROM_EMAIL"},
	"app.server.http.port":               {"PORT", "APP_SERVER_HTTP_PORT"},
	"modules.identity.otp_ttl_seconds":   {"OTP_TTL_SECONDS", "MODULES_IDENTITY_OTP_TTL_SECONDS"},
	"modules.identity.token_ttl_seconds": {"TOKEN_TTL_SECONDS", "MODULES_IDENTITY_TOKEN_TTL_SECONDS"},
}
