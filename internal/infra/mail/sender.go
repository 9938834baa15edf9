package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSender tells the ops inbox when a call captured an interested
// contact, so somebody follows up while the lead is still warm.
type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}

func NewEmailSender(host string, port int, user, password, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		To:       to,
	}
}

func (s *EmailSender) SendInterestedLead(name, phone, contact string) error {
	body := fmt.Sprintf(
		"Lead %s (%s) asked to be contacted.\n\nDetails left during the call:\n%s\n",
		name, phone, contact,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.User)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("Interested lead: %s", name))
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
