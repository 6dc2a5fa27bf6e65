package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/dreamevents/marketplace/config"
	"github.com/dreamevents/marketplace/logger"
)

var emailTemplates *template.Template

func init() {
	config.LoadEnv()
}

// InitTemplates parses the embedded email templates. Must be called once at
// startup before any mail is sent.
func InitTemplates(fs embed.FS) {
	emailTemplates = template.Must(template.ParseFS(fs, "templates/email/*.html"))
}

// Mailer sends marketplace emails over SMTP. When SMTP_HOST is unset it runs
// in simulation mode: the message is logged instead of sent, which stands in
// for a real mail transport in development.
type Mailer struct{}

func NewMailer() *Mailer {
	return &Mailer{}
}

type notificationData struct {
	Subject string
	Body    string
}

// Send delivers one notification email.
func (m *Mailer) Send(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		logger.InfoLogger.Infof("Email simulation: to=%s subject=%q body=%q", to, subject, body)
		return nil
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP port: %v", err)
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	html, err := renderNotification(subject, body)
	if err != nil {
		return err
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", to)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", html)

	dialer := gomail.NewDialer(smtpHost, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         smtpHost,
	}

	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Infof("Email sent to %s (%s)", to, subject)
	return nil
}

func renderNotification(subject, body string) (string, error) {
	if emailTemplates == nil {
		return "", fmt.Errorf("email templates not initialized")
	}

	var buf bytes.Buffer
	err := emailTemplates.ExecuteTemplate(&buf, "notification.html", notificationData{
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to execute notification email template: %v", err)
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return buf.String(), nil
}
