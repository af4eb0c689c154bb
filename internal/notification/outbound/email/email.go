package email

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/shandysiswandi/otpauth/internal/notification/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const welcomeSubject = "Welcome aboard"

var (
	welcomeText = texttemplate.Must(texttemplate.New("welcome_text").Parse(
		`Hi {{.Name}},

Your account for {{.Email}} is ready. Sign in any time with a code sent to this address.
`))

	welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome_html").Parse(`<!doctype html>
<html>
<body style="font-family:Arial,sans-serif;color:#222">
<p>Hi {{.Name}},</p>
<p>Your account for <strong>{{.Email}}</strong> is ready. Sign in any time with a code sent to this address.</p>
</body>
</html>
`))
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

func (m *Mail) SendWelcome(ctx context.Context, msg entity.Welcome) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "SendWelcome")
	defer span.End()

	out, err := renderWelcome(msg)
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

func renderWelcome(msg entity.Welcome) (mail.Message, error) {
	var text, html bytes.Buffer
	if err := welcomeText.Execute(&text, msg); err != nil {
		return mail.Message{}, err
	}
	if err := welcomeHTML.Execute(&html, msg); err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		To:       []string{msg.Email},
		Subject:  welcomeSubject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
