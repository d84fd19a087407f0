package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"text/template"
	"time"

	"github.com/news-api/internal/config"
	"github.com/wneessen/go-mail"
)

const codeSubject = "Your verification code"

var codeBody = template.Must(template.New("code").Parse(
	`Your verification code is {{.Code}}.

It expires in {{.Minutes}} minutes. If you did not request it, you can ignore this email.
`))

// CodeMailer delivers one-time codes by email.
type CodeMailer struct {
	from   string
	client *mail.Client
}

func NewCodeMailer(cfg *config.Config) (*CodeMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(30 * time.Second),
		mail.WithTLSConfig(&tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	if cfg.SMTPTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return &CodeMailer{from: cfg.SMTPFrom, client: client}, nil
}

func (m *CodeMailer) SendCode(ctx context.Context, to, code string, ttl time.Duration) error {
	msg, err := buildCodeMessage(m.from, to, code, ttl)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send code email: %w", err)
	}
	return nil
}

func buildCodeMessage(from, to, code string, ttl time.Duration) (*mail.Msg, error) {
	var body bytes.Buffer
	if err := codeBody.Execute(&body, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(ttl.Minutes())}); err != nil {
		return nil, fmt.Errorf("render code email: %w", err)
	}
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(codeSubject)
	msg.SetBodyString(mail.TypeTextPlain, body.String())
	return msg, nil
}
