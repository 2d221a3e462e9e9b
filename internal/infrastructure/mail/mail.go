// Package mail delivers password reset links.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
	"strconv"
	"time"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

const resetSubject = "Reset your MovieSearch password"

var resetBody = template.Must(template.New("reset").Parse(`<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid until {{.ExpiresAt}}.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>
`))

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender sends one composed message.
type Sender interface {
	Send(e *email.Email) error
}

type smtpSender struct {
	addr string
	auth smtp.Auth
}

func (s smtpSender) Send(e *email.Email) error {
	return e.Send(s.addr, s.auth)
}

// NewSMTPSender returns a Sender using PLAIN auth when a username is set.
func NewSMTPSender(cfg SMTPConfig) Sender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return smtpSender{addr: cfg.Host + ":" + strconv.Itoa(cfg.Port), auth: auth}
}

// Notifier implements ports.ResetNotifier over email.
type Notifier struct {
	sender  Sender
	from    string
	baseURL string
}

func NewNotifier(sender Sender, from, resetURL string) (*Notifier, error) {
	if _, err := url.Parse(resetURL); err != nil {
		return nil, fmt.Errorf("mail: invalid reset url: %w", err)
	}
	return &Notifier{sender: sender, from: from, baseURL: resetURL}, nil
}

func (n *Notifier) SendPasswordReset(ctx context.Context, d domain.ResetDelivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	link, err := ResetLink(n.baseURL, d.Token)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	err = resetBody.Execute(&body, struct {
		Name      string
		Link      string
		ExpiresAt string
	}{d.Name, link, d.ExpiresAt.UTC().Format(time.RFC1123)})
	if err != nil {
		return fmt.Errorf("mail: render reset body: %w", err)
	}

	e := email.NewEmail()
	e.From = n.from
	e.To = []string{d.Email}
	e.Subject = resetSubject
	e.HTML = body.Bytes()
	e.Text = []byte("Reset your password: " + link + "\n")

	if err := n.sender.Send(e); err != nil {
		return fmt.Errorf("mail: send reset email: %w", err)
	}
	return nil
}

// ResetLink appends the token as the "token" query parameter of base.
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("mail: invalid reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// LogNotifier stands in for email when SMTP is not configured. The link is
// only written when revealLink is set, which is meant for local development.
type LogNotifier struct {
	log        zerolog.Logger
	baseURL    string
	revealLink bool
}

func NewLogNotifier(log zerolog.Logger, resetURL string, revealLink bool) *LogNotifier {
	return &LogNotifier{log: log, baseURL: resetURL, revealLink: revealLink}
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, d domain.ResetDelivery) error {
	ev := n.log.Info().Str("account_id", d.AccountID).Time("expires_at", d.ExpiresAt)
	if n.revealLink {
		link, err := ResetLink(n.baseURL, d.Token)
		if err != nil {
			return err
		}
		ev = ev.Str("reset_link", link)
	}
	ev.Msg("password reset issued (email delivery disabled)")
	return nil
}
