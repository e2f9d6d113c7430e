package application

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

var (
	smtpServer     = os.Getenv("SMTP_SERVER")
	smtpServerPort = os.Getenv("SMTP_SERVER_PORT")
	smtpEmail      = os.Getenv("SMTP_AUTH_MAIL")
	smtpPassword   = os.Getenv("SMTP_AUTH_PASSWORD")
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailerFromEnv returns nil when no SMTP account is configured.
func NewMailerFromEnv() *Mailer {
	if smtpServer == "" || smtpEmail == "" {
		return nil
	}

	port, err := strconv.Atoi(smtpServerPort)
	if err != nil {
		port = 587
	}

	return &Mailer{
		dialer: gomail.NewDialer(smtpServer, port, smtpEmail, smtpPassword),
		from:   smtpEmail,
	}
}

func (mailer *Mailer) SendBookingConfirmation(email, confirmationCode, vehicleID string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", mailer.from)
	message.SetHeader("To", email)
	message.SetHeader("Subject", "Your TravelEase booking is confirmed")

	bodyString := fmt.Sprintf("Your booking for vehicle %s is confirmed.\nConfirmation code:\n%s", vehicleID, confirmationCode)
	message.SetBody("text", bodyString)

	return mailer.dialer.DialAndSend(message)
}
