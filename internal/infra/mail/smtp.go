package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/config"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/logger"
)

// SMTPMailer delivers reset emails over SMTP. Port 465 uses implicit TLS,
// other ports attempt STARTTLS when the server offers it.
type SMTPMailer struct {
	cfg    config.SMTPSettings
	logger *zap.Logger
}

var _ port.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg config.SMTPSettings, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: log}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, msg port.PasswordResetEmail) error {
	body := buildResetMessage(m.cfg.From, msg)

	if err := m.send(ctx, msg.To, body); err != nil {
		m.logger.Error("reset email delivery failed",
			zap.String("to", logger.MaskEmail(msg.To)),
			zap.Error(err),
		)
		return err
	}

	m.logger.Info("reset email sent", zap.String("to", logger.MaskEmail(msg.To)))
	return nil
}

func (m *SMTPMailer) send(ctx context.Context, to string, body []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var conn net.Conn
	var err error
	if m.cfg.Port == 465 || m.cfg.UseTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if m.cfg.Port != 465 && !m.cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write(body); err != nil {
		writer.Close()
		return fmt.Errorf("write message body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}

func buildResetMessage(from string, msg port.PasswordResetEmail) []byte {
	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: Password Reset Request\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")

	name := msg.Name
	if name == "" {
		name = "there"
	}

	b.WriteString("Hi " + name + ",\r\n\r\n")
	b.WriteString("A password reset was requested for your account. Use the link below to choose a new password:\r\n\r\n")
	b.WriteString(msg.ResetURL + "\r\n\r\n")
	b.WriteString("The link expires at " + msg.ExpiresAt.Format("02 Jan 2006 15:04 MST") + ".\r\n\r\n")
	b.WriteString("If you did not request this, you can ignore this email.\r\n")

	return []byte(b.String())
}
