package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	defaultPort    = 587
	sslPort        = 465
	defaultTimeout = 30 * time.Second
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
}

// Mailer 通过 SMTP 发送 HTML 邮件，每次发送单独建立连接
type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	return &Mailer{cfg: cfg}
}

// BuildMessage 构造邮件，不做任何网络操作
func (m *Mailer) BuildMessage(subject, html string) (*mail.Msg, error) {
	if len(m.cfg.To) == 0 {
		return nil, errors.New("mailer: no recipients")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("mailer: from: %w", err)
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return nil, fmt.Errorf("mailer: to: %w", err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}

func (m *Mailer) Send(ctx context.Context, subject, html string) error {
	msg, err := m.BuildMessage(subject, html)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(defaultTimeout),
	}
	if m.cfg.Port == sslPort {
		opts = append(opts, mail.WithSSL())
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mailer: new client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send to %s:%d: %w", m.cfg.Host, m.cfg.Port, err)
	}
	return nil
}
