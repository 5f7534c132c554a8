package external

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

const defaultSMTPDialTimeout = 10 * time.Second

var _ ports.EmailProvider = (*SMTPEmailProviderAdapter)(nil)

// SMTPEmailProviderAdapter implements EmailProvider port using SMTP
type SMTPEmailProviderAdapter struct {
	host        string
	port        int
	username    string
	password    string
	fromName    string
	fromAddr    string
	implicitTLS bool
	dialer      *net.Dialer
}

// EmailProviderConfig represents SMTP configuration
type EmailProviderConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	FromAddr string
	// ImplicitTLS wraps the connection in TLS from the first byte (port 465).
	// Otherwise STARTTLS is used when the server offers it.
	ImplicitTLS bool
	DialTimeout time.Duration
}

func NewSMTPEmailProviderAdapter(config EmailProviderConfig) *SMTPEmailProviderAdapter {
	timeout := config.DialTimeout
	if timeout <= 0 {
		timeout = defaultSMTPDialTimeout
	}

	return &SMTPEmailProviderAdapter{
		host:        config.Host,
		port:        config.Port,
		username:    config.Username,
		password:    config.Password,
		fromName:    config.FromName,
		fromAddr:    config.FromAddr,
		implicitTLS: config.ImplicitTLS,
		dialer:      &net.Dialer{Timeout: timeout},
	}
}

func (p *SMTPEmailProviderAdapter) SendEmail(ctx context.Context, params ports.EmailParams) error {
	if params.To == "" {
		return errors.NewValidationError("recipient email cannot be empty")
	}
	if params.Subject == "" {
		return errors.NewValidationError("email subject cannot be empty")
	}
	if params.Body == "" {
		return errors.NewValidationError("email body cannot be empty")
	}

	client, err := p.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(p.fromAddr); err != nil {
		return errors.NewEmailError("failed to set sender", err)
	}
	if err := client.Rcpt(params.To); err != nil {
		return errors.NewEmailError("failed to set recipient", err)
	}

	writer, err := client.Data()
	if err != nil {
		return errors.NewEmailError("failed to open message body", err)
	}
	if _, err := writer.Write([]byte(p.buildMessage(params))); err != nil {
		_ = writer.Close()
		return errors.NewEmailError("failed to write message", err)
	}
	// The server accepts or rejects the message when the body is terminated.
	if err := writer.Close(); err != nil {
		return errors.NewEmailError("server rejected message", err)
	}

	if err := client.Quit(); err != nil {
		return errors.NewEmailError("failed to close SMTP session", err)
	}
	return nil
}

// Verify opens a session, negotiates TLS and authenticates, then quits
// without sending anything.
func (p *SMTPEmailProviderAdapter) Verify(ctx context.Context) error {
	if err := p.ValidateConfiguration(); err != nil {
		return err
	}

	client, err := p.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Quit(); err != nil {
		return errors.NewEmailError("failed to close SMTP session", err)
	}
	return nil
}

func (p *SMTPEmailProviderAdapter) ValidateConfiguration() error {
	if p.host == "" {
		return errors.NewConfigurationError("SMTP host cannot be empty", nil)
	}
	if p.port < 1 || p.port > 65535 {
		return errors.NewConfigurationError("SMTP port must be between 1 and 65535", nil)
	}
	if p.fromAddr == "" {
		return errors.NewConfigurationError("from address cannot be empty", nil)
	}
	return nil
}

func (p *SMTPEmailProviderAdapter) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(p.host, strconv.Itoa(p.port))

	var (
		conn net.Conn
		err  error
	)
	if p.implicitTLS {
		tlsDialer := &tls.Dialer{NetDialer: p.dialer, Config: &tls.Config{ServerName: p.host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = p.dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, errors.NewEmailError("failed to connect to SMTP server", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		_ = conn.Close()
		return nil, errors.NewEmailError("failed to start SMTP session", err)
	}

	if !p.implicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: p.host}); err != nil {
				_ = client.Close()
				return nil, errors.NewEmailError("failed to establish secure TLS connection", err)
			}
		}
	}

	if p.username != "" && p.password != "" {
		auth := smtp.PlainAuth("", p.username, p.password, p.host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, errors.NewEmailError("failed to authenticate", err)
		}
	}

	return client, nil
}

func (p *SMTPEmailProviderAdapter) buildMessage(params ports.EmailParams) string {
	contentType := "text/plain"
	if params.IsHTML {
		contentType = "text/html"
	}

	from := p.fromAddr
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", p.fromName), p.fromAddr)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", params.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", params.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(params.Body)
	return b.String()
}
