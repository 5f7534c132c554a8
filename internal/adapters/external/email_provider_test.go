package external

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

// fakeSMTPServer speaks just enough SMTP for net/smtp's client.
type fakeSMTPServer struct {
	listener   net.Listener
	rejectRcpt bool

	mu       sync.Mutex
	commands []string
	messages []string
}

func newFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSMTPServer{listener: listener}
	go s.serve()
	t.Cleanup(func() { _ = listener.Close() })
	return s
}

func (s *fakeSMTPServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTPServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeSMTPServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	reply("220 localhost ESMTP ready")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])

		s.mu.Lock()
		s.commands = append(s.commands, verb)
		s.mu.Unlock()

		switch verb {
		case "EHLO", "HELO":
			reply("250 localhost")
		case "MAIL":
			reply("250 OK")
		case "RCPT":
			if s.rejectRcpt {
				reply("550 mailbox unavailable")
			} else {
				reply("250 OK")
			}
		case "DATA":
			reply("354 end with <CRLF>.<CRLF>")
			var body strings.Builder
			for {
				dataLine, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if dataLine == ".\r\n" {
					break
				}
				body.WriteString(dataLine)
			}
			s.mu.Lock()
			s.messages = append(s.messages, body.String())
			s.mu.Unlock()
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 not implemented")
		}
	}
}

func (s *fakeSMTPServer) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *fakeSMTPServer) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func newTestEmailProvider(port int) *SMTPEmailProviderAdapter {
	return NewSMTPEmailProviderAdapter(EmailProviderConfig{
		Host:        "127.0.0.1",
		Port:        port,
		FromName:    "Weather Updates",
		FromAddr:    "no-reply@example.com",
		DialTimeout: time.Second,
	})
}

func TestSMTPEmailProviderAdapter_ValidateConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		config      EmailProviderConfig
		expectError bool
	}{
		{
			name:   "Valid Mailhog Config",
			config: EmailProviderConfig{Host: "mailhog", Port: 1025, FromName: "Weather", FromAddr: "no-reply@example.com"},
		},
		{
			name:   "Valid Authenticated Config",
			config: EmailProviderConfig{Host: "smtp.gmail.com", Port: 587, Username: "user", Password: "secret", FromAddr: "no-reply@example.com"},
		},
		{
			name:        "Missing Host",
			config:      EmailProviderConfig{Port: 587, FromAddr: "no-reply@example.com"},
			expectError: true,
		},
		{
			name:        "Invalid Port",
			config:      EmailProviderConfig{Host: "smtp.example.com", Port: 0, FromAddr: "no-reply@example.com"},
			expectError: true,
		},
		{
			name:        "Missing From Address",
			config:      EmailProviderConfig{Host: "smtp.example.com", Port: 587},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSMTPEmailProviderAdapter(tt.config).ValidateConfiguration()
			if tt.expectError {
				assert.True(t, errors.IsConfigurationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSMTPEmailProviderAdapter_SendEmail(t *testing.T) {
	server := newFakeSMTPServer(t)
	provider := newTestEmailProvider(server.port())

	err := provider.SendEmail(context.Background(), ports.EmailParams{
		To:      "user@example.com",
		Subject: "Weather Update for Kyiv",
		Body:    "<p>12.0°C</p>",
		IsHTML:  true,
	})
	require.NoError(t, err)

	messages := server.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "To: user@example.com")
	assert.Contains(t, messages[0], "Subject: Weather Update for Kyiv")
	assert.Contains(t, messages[0], "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, messages[0], "<p>12.0°C</p>")
	assert.Equal(t, []string{"EHLO", "MAIL", "RCPT", "DATA", "QUIT"}, server.Commands())
}

func TestSMTPEmailProviderAdapter_SendEmail_RecipientRejected(t *testing.T) {
	server := newFakeSMTPServer(t)
	server.rejectRcpt = true
	provider := newTestEmailProvider(server.port())

	err := provider.SendEmail(context.Background(), ports.EmailParams{
		To: "nobody@example.com", Subject: "Hi", Body: "body",
	})
	require.Error(t, err)
	assert.True(t, errors.IsEmailError(err))
	assert.Contains(t, err.Error(), "failed to set recipient")
	assert.Empty(t, server.Messages())
}

func TestSMTPEmailProviderAdapter_SendEmail_Validation(t *testing.T) {
	provider := newTestEmailProvider(1025)

	tests := []ports.EmailParams{
		{Subject: "s", Body: "b"},
		{To: "user@example.com", Body: "b"},
		{To: "user@example.com", Subject: "s"},
	}
	for _, params := range tests {
		err := provider.SendEmail(context.Background(), params)
		assert.True(t, errors.IsValidationError(err))
	}
}

func TestSMTPEmailProviderAdapter_Verify(t *testing.T) {
	server := newFakeSMTPServer(t)
	provider := newTestEmailProvider(server.port())

	require.NoError(t, provider.Verify(context.Background()))
	assert.Equal(t, []string{"EHLO", "QUIT"}, server.Commands())
	assert.Empty(t, server.Messages())
}

func TestSMTPEmailProviderAdapter_Verify_Unreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	provider := newTestEmailProvider(port)
	err = provider.Verify(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsEmailError(err))
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestSMTPEmailProviderAdapter_BuildMessage(t *testing.T) {
	provider := newTestEmailProvider(1025)

	plain := provider.buildMessage(ports.EmailParams{To: "user@example.com", Subject: "Plain", Body: "Body"})
	assert.Contains(t, plain, "From: Weather Updates <no-reply@example.com>\r\n")
	assert.Contains(t, plain, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.Contains(t, plain, "MIME-Version: 1.0\r\n")
	assert.True(t, strings.HasSuffix(plain, "\r\n\r\nBody"))

	encoded := provider.buildMessage(ports.EmailParams{To: "user@example.com", Subject: "Погода: Київ", Body: "b"})
	assert.Contains(t, encoded, "Subject: =?utf-8?q?")
	assert.NotContains(t, encoded, "Subject: Погода")
}
