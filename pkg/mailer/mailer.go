// Package mailer delivers transactional email. Delivery is best-effort:
// callers log failures and never block user flows on them.
package mailer

// Mailer sends the account confirmation email.
type Mailer interface {
	SendConfirmation(toEmail, toName, confirmationURL string) error
}

// Noop discards messages; used when no delivery key is configured and in tests.
type Noop struct{}

func (Noop) SendConfirmation(string, string, string) error { return nil }
