// AngelaMos | 2026
// sender.go

package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/angelamos/learnify/internal/config"
	"github.com/angelamos/learnify/internal/core"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender is the mail-delivery collaborator.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: Learnify <%s>\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To},
		[]byte(b.String()))
	if err != nil {
		return core.ExternalServiceError("mail delivery", err)
	}

	return nil
}

var _ Sender = (*SMTPSender)(nil)

// PasswordResetHTML renders the reset email body with the one-time
// code inlined.
func PasswordResetHTML(email, otp string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif">
<h2>Reset your password</h2>
<p>We received a password reset request for <b>%s</b>.</p>
<p>Your one-time code is:</p>
<p style="font-size:24px;letter-spacing:4px"><b>%s</b></p>
<p>The code expires in 15 minutes. If you did not request a reset, you
can ignore this email.</p>
</div>`, email, otp)
}
