package email

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"math"
	texttemplate "text/template"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const otpSubject = "Your verification code"

var (
	otpText = texttemplate.Must(texttemplate.New("otp_text").Parse(
		`Your verification code is {{.Code}}

It expires in {{.Minutes}} {{if eq .Minutes 1}}minute{{else}}minutes{{end}}. If you did not request it, ignore this email.
`))

	otpHTML = htmltemplate.Must(htmltemplate.New("otp_html").Parse(`<!doctype html>
<html>
<body style="font-family:Arial,sans-serif;color:#222">
<p>Your verification code is</p>
<p style="font-size:28px;font-weight:bold;letter-spacing:6px">{{.Code}}</p>
<p>It expires in {{.Minutes}} {{if eq .Minutes 1}}minute{{else}}minutes{{end}}. If you did not request it, ignore this email.</p>
</body>
</html>
`))
)

type otpData struct {
	Code    string
	Minutes int
}

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// SendOTP delivers the verification code email.
func (m *Mail) SendOTP(ctx context.Context, msg entity.OTPMail) error {
	ctx, span := m.ins.Tracer("identity.outbound.email").Start(ctx, "SendOTP")
	defer span.End()

	out, err := renderOTP(msg)
	if err == nil {
		err = m.client.Send(ctx, out)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func renderOTP(msg entity.OTPMail) (mail.Message, error) {
	data := otpData{Code: msg.Code, Minutes: expiryMinutes(msg.ExpiresIn)}

	var text, html bytes.Buffer
	if err := otpText.Execute(&text, data); err != nil {
		return mail.Message{}, err
	}
	if err := otpHTML.Execute(&html, data); err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		To:       []string{msg.To},
		Subject:  otpSubject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}

// expiryMinutes rounds up so the hint never promises more time than is left.
func expiryMinutes(d time.Duration) int {
	return max(int(math.Ceil(d.Minutes())), 1)
}
