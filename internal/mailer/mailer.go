// Package mailer delivers EventNest transactional email over SMTP: ticket
// confirmations with the QR code embedded, and certificate notifications
// with the PDF attached.
package mailer

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"eventnest/internal/model"
)

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
}

type Mailer struct {
	cfg Config
	log *zerolog.Logger
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) addr() string {
	return fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
}

func (m *Mailer) auth() smtp.Auth {
	return smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
}

// SendConfirmationEmail mails the ticket for a fresh registration. The QR
// data URL, when present, is embedded directly in the HTML body.
func (m *Mailer) SendConfirmationEmail(user *model.User, event *model.Event, reg *model.Registration) error {
	qrBlock := "<p>Your QR code could not be generated; present your ticket code at the entrance.</p>"
	if reg.QRCode != nil {
		qrBlock = fmt.Sprintf(`<div style="text-align:center;margin:20px 0;">
      <p><strong>Your Check-in QR Code:</strong></p>
      <img src="%s" alt="QR Code" style="max-width:250px;border:3px solid #10b981;border-radius:8px;"/>
      <p style="font-size:14px;color:#6b7280;">Show this QR code at the event entrance for quick check-in</p>
    </div>`, *reg.QRCode)
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;">
    <div style="background:#10b981;color:white;padding:30px;text-align:center;border-radius:10px 10px 0 0;">
      <h1>Event Registration Confirmed!</h1>
    </div>
    <div style="background:#f9fafb;padding:30px;border-radius:0 0 10px 10px;">
      <p>Hi %s,</p>
      <p>Great news! You've successfully registered for <strong>%s</strong>.</p>
      <div style="background:white;padding:20px;border-radius:8px;border:2px dashed #10b981;">
        <h2 style="color:#10b981;margin-top:0;">Your Event Ticket</h2>
        <p><strong>Event:</strong> %s</p>
        <p><strong>Date:</strong> %s</p>
        <p><strong>Location:</strong> %s</p>
        <p><strong>Ticket Code:</strong> <code>%s</code></p>
        %s
      </div>
      <p><a href="%s/events/%d" style="background:#10b981;color:white;padding:12px 24px;text-decoration:none;border-radius:6px;">View Event Details</a></p>
      <p><strong>Important:</strong> save this email, you'll need the QR code to check in at the event.</p>
      <p>Best regards,<br><strong>The EventNest Team</strong></p>
    </div>
  </div>
</body></html>`,
		user.Name, event.Title, event.Title,
		event.Date.Format("Monday, January 2, 2006 15:04"),
		event.Location, reg.TicketCode, qrBlock,
		m.cfg.FrontendURL, event.ID,
	)

	msg := buildHTMLMessage(m.cfg.From, user.Email, "Ticket Confirmation: "+event.Title, body)

	if err := smtp.SendMail(m.addr(), m.auth(), m.cfg.From, []string{user.Email}, msg); err != nil {
		m.log.Warn().Err(err).Str("email", user.Email).Msg("failed to send confirmation email")
		return fmt.Errorf("send confirmation email: %w", err)
	}

	m.log.Info().Str("email", user.Email).Int64("registration_id", reg.ID).Msg("confirmation email sent")
	return nil
}

// SendCertificateEmail mails an issued certificate with the PDF attached.
func (m *Mailer) SendCertificateEmail(d *model.CertificateDetail, pdfPath string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;">
    <div style="background:#10b981;color:white;padding:40px 30px;text-align:center;border-radius:10px 10px 0 0;">
      <h1>Certificate Issued!</h1>
    </div>
    <div style="background:#f9fafb;padding:40px 30px;border-radius:0 0 10px 10px;">
      <p style="text-align:center;font-size:24px;color:#10b981;font-weight:bold;">Congratulations, %s!</p>
      <p style="text-align:center;font-size:18px;">You've earned a certificate of participation!</p>
      <div style="background:white;padding:30px;border-radius:8px;border:2px solid #10b981;">
        <h2 style="text-align:center;color:#1f2937;margin:0;">Certificate of Participation</h2>
        <p style="text-align:center;color:#10b981;font-size:24px;font-weight:bold;">%s</p>
        <p><strong>Event Date:</strong> %s</p>
        <p><strong>Location:</strong> %s</p>
        <p><strong>Issued:</strong> %s</p>
        <p><strong>Certificate ID:</strong> <code>%d</code></p>
      </div>
      <p style="text-align:center;">
        <a href="%s/dashboard/certificates" style="background:#10b981;color:white;padding:14px 28px;text-decoration:none;border-radius:6px;">View My Certificates</a>
        <a href="%s/verify/%d" style="background:#6b7280;color:white;padding:14px 28px;text-decoration:none;border-radius:6px;">Verify Certificate</a>
      </p>
      <p>Your certificate is attached to this email as a PDF document.</p>
      <p style="text-align:center;">Best regards,<br><strong>The EventNest Team</strong></p>
    </div>
  </div>
</body></html>`,
		d.RecipientName, d.EventTitle,
		d.EventDate.Format("Monday, January 2, 2006"),
		d.EventLocation,
		d.IssuedAt.Format("January 2, 2006"),
		d.ID,
		m.cfg.FrontendURL, m.cfg.FrontendURL, d.ID,
	)

	attachment, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("read certificate pdf: %w", err)
	}

	attachName := fmt.Sprintf("Certificate-%s.pdf", sanitizeFilename(d.EventTitle))
	msg := buildMessageWithAttachment(m.cfg.From, d.RecipientEmail,
		"Certificate: "+d.EventTitle, body, attachName, attachment)

	if err := smtp.SendMail(m.addr(), m.auth(), m.cfg.From, []string{d.RecipientEmail}, msg); err != nil {
		m.log.Warn().Err(err).Str("email", d.RecipientEmail).Msg("failed to send certificate email")
		return fmt.Errorf("send certificate email: %w", err)
	}

	m.log.Info().Str("email", d.RecipientEmail).Int64("certificate_id", d.ID).Msg("certificate email sent")
	return nil
}

func buildHTMLMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func buildMessageWithAttachment(from, to, subject, htmlBody, filename string, attachment []byte) []byte {
	const boundary = "eventnest-mail-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: application/pdf\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", filename)

	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
