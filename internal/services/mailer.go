package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
)

// Mailer delivers plain-text mail.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail over an implicit TLS connection.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// NewSMTPMailer constructs SMTPMailer. from defaults to username.
func NewSMTPMailer(host string, port int, username, password, from, fromName string) *SMTPMailer {
	if from == "" {
		from = username
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

// Send delivers one message.
func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(m.from, m.fromName, to, subject, body)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}

func buildMessage(from, fromName, to, subject, body string) []byte {
	sender := (&mail.Address{Name: fromName, Address: from}).String()

	var b strings.Builder
	b.WriteString("From: " + sender + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogMailer writes mail to the log. Used when SMTP is not configured.
type LogMailer struct{}

// Send logs the message.
func (LogMailer) Send(to, subject, body string) error {
	log.Printf("[Mail] SMTP not configured, to=%s subject=%q body=%q", to, subject, body)
	return nil
}
