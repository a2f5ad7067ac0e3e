package domain

// Mailer sends an email with both HTML and plain text bodies.
type Mailer interface {
	Send(to, subject, html, text string) error
}
