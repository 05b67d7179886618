package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
)

// Sender delivers bid decision emails over SMTP. When SMTP is not configured
// the noop sender is used and only the in-app notification ledger records the
// decision.
type Sender interface {
	SendBidDecision(toEmail, fullName, tenderTitle string, status models.BidStatus, totalScore *float64) error
}

type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// NewSender returns the SMTP sender, or a noop when no host is configured.
func NewSender(cfg Config) Sender {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP not configured, decision emails disabled")
		return noopSender{}
	}
	return &smtpSender{cfg: cfg}
}

type smtpSender struct {
	cfg Config
}

func (s *smtpSender) SendBidDecision(toEmail, fullName, tenderTitle string, status models.BidStatus, totalScore *float64) error {
	subject := "Your bid was accepted"
	if status == models.BidStatusRejected {
		subject = "Your bid was rejected"
	}

	score := "not scored"
	if totalScore != nil {
		score = fmt.Sprintf("%.1f", *totalScore)
	}

	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your bid for <strong>%s</strong> was <strong>%s</strong>.</p><p>Total score: %s</p>",
		fullName, tenderTitle, status, score,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.FromEmail, s.cfg.FromName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUsername, s.cfg.SMTPPassword)
	return d.DialAndSend(m)
}

type noopSender struct{}

func (noopSender) SendBidDecision(string, string, string, models.BidStatus, *float64) error {
	return nil
}
