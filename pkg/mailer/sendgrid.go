package mailer

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const confirmationSubject = "Confirmă-ți contul EduAI"

const confirmationBody = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #2563eb; color: white; padding: 20px; text-align: center;">
      <h1>🎓 Bine ai venit la EduAI!</h1>
    </div>
    <div style="background: #f8fafc; padding: 30px;">
      <h2>Salut %s!</h2>
      <p>Mulțumim că te-ai înregistrat la EduAI! Pentru a-ți finaliza contul, te rugăm să îți confirmi adresa de email.</p>
      <p><a href="%s" style="display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none;">Confirmă contul</a></p>
      <p>Sau copiază și lipește acest link în browser:</p>
      <p style="word-break: break-all;">%s</p>
      <p>Dacă nu te-ai înregistrat tu la EduAI, poți ignora acest email.</p>
      <p>Cu drag,<br>Echipa EduAI</p>
    </div>
  </div>
</body>
</html>`

// SendgridMailer sends transactional email through the SendGrid API.
type SendgridMailer struct {
	key  string
	from *sgmail.Email
}

// NewSendgridMailer builds a SendGrid-backed mailer.
func NewSendgridMailer(apiKey, fromName, fromEmail string) *SendgridMailer {
	return &SendgridMailer{
		key:  apiKey,
		from: sgmail.NewEmail(fromName, fromEmail),
	}
}

// SendConfirmation delivers the account confirmation email.
func (m *SendgridMailer) SendConfirmation(toEmail, toName, confirmationURL string) error {
	to := sgmail.NewEmail(toName, toEmail)
	html := fmt.Sprintf(confirmationBody, toName, confirmationURL, confirmationURL)
	message := sgmail.NewSingleEmail(m.from, confirmationSubject, to, "", html)
	resp, err := sendgrid.NewSendClient(m.key).Send(message)
	if err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send confirmation email: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
