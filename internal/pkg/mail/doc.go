// Package mail defines the contracts for sending email messages.
//
// Use cases work with the Mail interface and the Message payload. SMTP is the
// production transport; Memory keeps messages in process for local runs and
// tests.
package mail
