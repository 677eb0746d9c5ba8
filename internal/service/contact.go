package service

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pharmhub-dev/pharmhub/internal/logger"
)

type ContactService interface {
	SendMessage(name, address, message string) error
}

// Contact forwards contact-form submissions to the site inbox. User-supplied
// text is sanitized before it is embedded in the HTML email.
type Contact struct {
	email     Email
	siteInbox string
	policy    *bluemonday.Policy
}

func NewContact(email Email, siteInbox string) *Contact {
	return &Contact{
		email:     email,
		siteInbox: siteInbox,
		policy:    bluemonday.UGCPolicy(),
	}
}

// SendMessage validates the sender address and dispatches the email in the
// background. Delivery failures are logged, never surfaced to the submitter.
func (c *Contact) SendMessage(name, address, message string) error {
	if err := c.email.IsCorrect(address); err != nil {
		return err
	}

	safeName := c.policy.Sanitize(name)
	safeMessage := c.policy.Sanitize(message)

	subject := fmt.Sprintf("New message from %s: %s", address, safeName)
	body := fmt.Sprintf(`
		<h3>New Contact Form Message</h3>
		<p><b>From:</b> %s &lt;%s&gt;</p>
		<p><b>Message:</b></p>
		<p>%s</p>
	`, safeName, address, safeMessage)

	go func() {
		if err := c.email.Send(c.siteInbox, subject, body); err != nil {
			logger.Log.Error("failed to forward contact message", "error", err)
		}
	}()

	return nil
}
