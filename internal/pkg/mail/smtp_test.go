package mail

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTP(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{Host: "smtp.test"})
	require.ErrorIs(t, err, ErrSMTPHostPortRequired)

	s, err := NewSMTP(SMTPConfig{Host: "smtp.test", Port: 587, FromName: "OTP Service", FromAddress: "no-reply@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.test:587", s.addr)
	assert.Equal(t, `"OTP Service" <no-reply@x.com>`, s.defaultFrom)
	assert.Nil(t, s.auth)
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "", FormatAddress("Name", ""))
	assert.Equal(t, "a@x.com", FormatAddress("", "a@x.com"))
	assert.Equal(t, `"A" <a@x.com>`, FormatAddress("A", "a@x.com"))
}

func TestSMTP_SendValidation(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: 1})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{From: "a@x.com"})
	assert.ErrorIs(t, err, ErrSMTPNoRecipients)

	err = s.Send(context.Background(), Message{To: []string{"b@x.com"}})
	assert.ErrorIs(t, err, ErrSMTPNoSender)
}

func TestSMTP_SendCanceled(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "192.0.2.1", Port: 25, FromAddress: "a@x.com"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Send(ctx, Message{To: []string{"b@x.com"}, Subject: "hi", TextBody: "x"})
	require.Error(t, err)
}

func TestBuildBody(t *testing.T) {
	body, ct := buildBody(Message{TextBody: "plain"})
	assert.Equal(t, "plain", body)
	assert.Equal(t, "text/plain; charset=UTF-8", ct)

	body, ct = buildBody(Message{HTMLBody: "<b>x</b>"})
	assert.Equal(t, "<b>x</b>", body)
	assert.Equal(t, "text/html; charset=UTF-8", ct)

	body, ct = buildBody(Message{TextBody: "plain", HTMLBody: "<b>x</b>"})
	require.True(t, strings.HasPrefix(ct, "multipart/alternative; boundary=otpauth-boundary-"))
	boundary := strings.TrimPrefix(ct, "multipart/alternative; boundary=")
	assert.Equal(t, 3, strings.Count(body, "--"+boundary))
	assert.True(t, strings.HasSuffix(body, "--"+boundary+"--"))
	assert.Contains(t, body, "Content-Type: text/plain; charset=UTF-8\r\n\r\nplain")
	assert.Contains(t, body, "Content-Type: text/html; charset=UTF-8\r\n\r\n<b>x</b>")
}

func TestBuildRaw_Headers(t *testing.T) {
	raw := string(buildRaw(`"OTP" <no-reply@x.com>`, Message{
		To:       []string{"a@x.com"},
		Cc:       []string{"c@x.com"},
		Subject:  "Your verification code",
		TextBody: "123456",
	}))

	assert.Contains(t, raw, "From: \"OTP\" <no-reply@x.com>\r\n")
	assert.Contains(t, raw, "To: a@x.com\r\n")
	assert.Contains(t, raw, "Cc: c@x.com\r\n")
	assert.Contains(t, raw, "Subject: Your verification code\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n123456"))
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	_, ok := m.Last()
	assert.False(t, ok)

	require.NoError(t, m.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "one"}))
	m.FailWith(errors.New("down"))
	require.Error(t, m.Send(context.Background(), Message{Subject: "two"}))
	m.FailWith(nil)
	require.NoError(t, m.Send(context.Background(), Message{Subject: "three"}))

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "three", last.Subject)
	assert.Len(t, m.Sent(), 2)
}
