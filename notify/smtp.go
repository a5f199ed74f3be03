// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/RenAndKiwi/nostring/errs"
)

// EmailConfig names the SMTP endpoint and credentials used for owner and
// heir email delivery (spec §6.4).
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	ImplicitTLS bool // true for SMTPS (port 465); false uses STARTTLS
}

// isLoopback reports whether host is one SendEmail allows without TLS, for local
// testing (spec §6.4: "plaintext is allowed only against loopback for
// testing").
func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return host == "localhost"
}

// SendEmail delivers one message per the SMTP contract (spec §6.4): STARTTLS
// or implicit TLS, with plaintext permitted only against loopback.
func SendEmail(cfg EmailConfig, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	msg := buildMIMEMessage(cfg.From, to, subject, body)

	if cfg.ImplicitTLS {
		return sendImplicitTLS(cfg, addr, auth, to, msg)
	}
	if !isLoopback(cfg.Host) {
		return sendSTARTTLS(cfg, addr, auth, to, msg)
	}
	// Loopback is allowed to skip TLS entirely for local testing.
	if err := smtp.SendMail(addr, auth, cfg.From, []string{to}, msg); err != nil {
		return errs.Wrap(errs.SmtpError, "send failed", err)
	}
	return nil
}

func sendSTARTTLS(cfg EmailConfig, addr string, auth smtp.Auth, to string, msg []byte) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return errs.Wrap(errs.SmtpError, "dial failed", err)
	}
	defer c.Close()
	if err := c.StartTLS(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
		return errs.Wrap(errs.SmtpError, "starttls failed", err)
	}
	return deliverOverSession(c, auth, cfg.From, to, msg)
}

func sendImplicitTLS(cfg EmailConfig, addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return errs.Wrap(errs.SmtpError, "tls dial failed", err)
	}
	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return errs.Wrap(errs.SmtpError, "smtp handshake failed", err)
	}
	defer c.Close()
	return deliverOverSession(c, auth, cfg.From, to, msg)
}

func deliverOverSession(c *smtp.Client, auth smtp.Auth, from, to string, msg []byte) error {
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return errs.Wrap(errs.SmtpError, "auth failed", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return errs.Wrap(errs.SmtpError, "MAIL FROM rejected", err)
	}
	if err := c.Rcpt(to); err != nil {
		return errs.Wrap(errs.SmtpError, "RCPT TO rejected", err)
	}
	w, err := c.Data()
	if err != nil {
		return errs.Wrap(errs.SmtpError, "DATA rejected", err)
	}
	if _, err := w.Write(msg); err != nil {
		return errs.Wrap(errs.SmtpError, "message write failed", err)
	}
	if err := w.Close(); err != nil {
		return errs.Wrap(errs.SmtpError, "message commit failed", err)
	}
	return c.Quit()
}

func buildMIMEMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
