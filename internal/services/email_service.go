package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"gocart-backend/config"
)

// EmailService sends best-effort notification emails. A misconfigured or
// failing SMTP server must never abort the operation that triggered the
// notification; callers log the error and carry on.
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	if cfg.SMTPHost == "" {
		log.Println("Email service: SMTP not configured, notifications disabled")
	}
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.EmailFrom,
	}
}

// Send sends a plain-text email
func (s *EmailService) Send(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("smtp not configured")
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// NotifyStoreReviewed emails a store about an approval decision
func (s *EmailService) NotifyStoreReviewed(to, storeName, decision string) error {
	subject := fmt.Sprintf("Your store %q has been %s", storeName, decision)
	body := fmt.Sprintf("Hello,\n\nYour store %q has been %s by the marketplace team.\n", storeName, decision)
	return s.Send(to, subject, body)
}

// NotifyProductReviewed emails a store about a product decision
func (s *EmailService) NotifyProductReviewed(to, productName, decision, note string) error {
	subject := fmt.Sprintf("Product %q %s", productName, decision)
	body := fmt.Sprintf("Hello,\n\nYour product %q has been %s.\n", productName, decision)
	if note != "" {
		body += "\nReviewer note: " + note + "\n"
	}
	return s.Send(to, subject, body)
}
