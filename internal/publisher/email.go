package publisher

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/ryosukesatoh/doc-digest/internal/summarizer"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailPublisher sends the summary as an HTML email via SMTP.
type EmailPublisher struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	send     sendMailFunc
}

func NewEmailPublisher(host string, port int, username, password, from string, to []string) *EmailPublisher {
	return &EmailPublisher{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
	}
}

func (p *EmailPublisher) Publish(_ context.Context, summary *summarizer.Summary) error {
	subject := fmt.Sprintf("Summary: %s - %s", summary.Source, summary.Date.Format("2006-01-02"))
	body := buildHTMLBody(summary)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		p.from,
		strings.Join(p.to, ","),
		subject,
		body,
	)

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	var auth smtp.Auth
	if p.username != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}

	if err := p.send(addr, auth, p.from, p.to, []byte(msg)); err != nil {
		return fmt.Errorf("email: failed to send: %w", err)
	}

	return nil
}

func buildHTMLBody(summary *summarizer.Summary) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><head><style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 700px; margin: 0 auto; padding: 20px; color: #333; }
h1 { color: #1a1a2e; border-bottom: 2px solid #e94560; padding-bottom: 10px; }
.summary { background: #f0f0f0; padding: 15px; border-radius: 8px; }
</style></head><body>`)

	sb.WriteString(fmt.Sprintf("<h1>Summary: %s</h1>", html.EscapeString(summary.Source)))
	sb.WriteString(fmt.Sprintf("<p><em>%s</em></p>", summary.Date.Format("January 2, 2006")))
	sb.WriteString(fmt.Sprintf(`<div class="summary"><p>%s</p></div>`, html.EscapeString(summary.Text)))

	sb.WriteString("</body></html>")
	return sb.String()
}
