package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

const senderName = "MF Brokers"

// Mailer delivers one-time codes to users.
type Mailer interface {
	SendOTP(ctx context.Context, recipient, otp string) error
}

// SMTPMailer sends OTP mail through an SMTP relay using STARTTLS.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	sender   string
}

// Ensure SMTPMailer implements Mailer
var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer for the given relay.
func NewSMTPMailer(host string, port int, username, password, sender string) (*SMTPMailer, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if sender == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sender:   sender,
	}, nil
}

// SendOTP delivers the one-time code to recipient.
func (m *SMTPMailer) SendOTP(ctx context.Context, recipient, otp string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(senderName, m.sender); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(fmt.Sprintf("Your OTP Code [%s] - MF Brokers", otp))
	msg.SetBodyString(mail.TypeTextPlain, otpBody(otp))

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.username != "" && m.password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func otpBody(otp string) string {
	return fmt.Sprintf(`Hello,

Your One-Time Password (OTP) is: %s

This OTP is valid for 5 minutes.

Do not share this code with anyone.

- MF Brokers Team
`, otp)
}
