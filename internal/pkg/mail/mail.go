package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/folio-space/folio/internal/config"
)

// Message is a single email to send.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender sends emails over SMTP.
type Sender struct {
	cfg  config.MailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(cfg config.MailConfig) *Sender {
	s := &Sender{cfg: cfg}
	if cfg.Secure {
		s.send = s.sendImplicitTLS
	} else {
		s.send = smtp.SendMail
	}
	return s
}

// Enabled reports whether Send delivers anything.
func (s *Sender) Enabled() bool {
	return s != nil && s.cfg.Enable && s.cfg.Host != ""
}

// Send dispatches an email. It is a no-op while mail is disabled.
func (s *Sender) Send(msg Message) error {
	if !s.Enabled() {
		return nil
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	from := s.from()
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}
	return s.send(addr, auth, from, msg.To, buildMIME(from, msg))
}

func (s *Sender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}

// sendImplicitTLS is smtp.SendMail over a TLS connection (SMTPS, port 465).
func (s *Sender) sendImplicitTLS(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: 15 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("mail: dial: %w", err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if a != nil {
		if err := client.Auth(a); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMIME(from string, msg Message) []byte {
	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", sanitizeHeader(msg.Subject)))
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	if msg.ReplyTo != "" {
		body.WriteString(fmt.Sprintf("Reply-To: %s\r\n", sanitizeHeader(msg.ReplyTo)))
	}
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)
	return body.Bytes()
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// ContactNotifyData feeds the contact notification template.
type ContactNotifyData struct {
	SiteTitle string
	Name      string
	Email     string
	Message   string
	IP        string
	At        time.Time
}

const contactNotifyTpl = `<!DOCTYPE html>
<html lang="en">
<head><meta http-equiv="Content-Type" content="text/html; charset=UTF-8" /></head>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">New message on {{.SiteTitle}}</h2>
  <p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; wrote:</p>
  <div style="background:#f3f4f6;border-radius:8px;padding:12px 16px;white-space:pre-wrap">{{.Message}}</div>
  <p style="color:#999;font-size:12px">IP: {{.IP}}<br />Received: {{.At.Format "2006-01-02 15:04 MST"}}</p>
</div>
</body>
</html>`

var contactTemplate = template.Must(template.New("contact").Parse(contactNotifyTpl))

// SendContactNotify mails the configured owner address about a new message.
// Replies go straight to the sender.
func (s *Sender) SendContactNotify(data ContactNotifyData) error {
	if !s.Enabled() {
		return nil
	}
	to := s.cfg.To
	if to == "" {
		to = s.from()
	}
	var buf bytes.Buffer
	if err := contactTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("mail: render contact notify: %w", err)
	}
	return s.Send(Message{
		To:      []string{to},
		ReplyTo: data.Email,
		Subject: fmt.Sprintf("[%s] New message from %s", data.SiteTitle, data.Name),
		HTML:    buf.String(),
	})
}
