package services

import (
	"fmt"

	"sigca-api/config"
)

// Mailer delivers notification emails. The SMTP implementation wraps
// config.SendMailWithAttachments; tests substitute a fake.
type Mailer interface {
	Send(to []string, subject, html string, attachments []config.Attachment) error
}

// SMTPMailer sends through the configured SMTP relay.
type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) Send(to []string, subject, html string, attachments []config.Attachment) error {
	return config.SendMailWithAttachments(to, subject, html, attachments)
}

func cuerpoVeredicto(autor, titulo, decision string) string {
	return fmt.Sprintf(`
		<p>Estimado(a) %s:</p>
		<p>El comité evaluador ha emitido el dictamen de su trabajo <strong>%s</strong>:
		<strong>%s</strong>.</p>
		<p>Encontrará el dictamen oficial en el documento adjunto.</p>
		<p>Atentamente,<br>Comité Organizador SIGCA</p>`,
		autor, titulo, decision)
}
