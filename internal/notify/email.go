// Package notify sends purchase-confirmation email. Delivery is best
// effort: a failed send never fails or undoes the purchase.
package notify

import (
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional email through SendGrid.
type Mailer struct {
	apiKey string
	from   string
	logger *log.Logger
}

func NewMailer(apiKey, from string, logger *log.Logger) *Mailer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Mailer{apiKey: apiKey, from: from, logger: logger}
}

// SendTicket emails the purchase receipt to the ticket's purchaser.
func (m *Mailer) SendTicket(t domain.Ticket) error {
	if m.apiKey == "" {
		m.logger.Printf("mailer: no api key configured, skipping ticket %s", t.Code)
		return nil
	}

	subject := fmt.Sprintf("Your purchase %s", t.Code)
	body := ticketBody(t)

	from := mail.NewEmail("Storefront", m.from)
	to := mail.NewEmail("", t.Purchaser)
	message := mail.NewSingleEmail(from, subject, to, body, fmt.Sprintf("<pre>%s</pre>", body))

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", response.StatusCode, response.Body)
	}
	m.logger.Printf("mailer: sent ticket %s to %s status=%d", t.Code, t.Purchaser, response.StatusCode)
	return nil
}

func ticketBody(t domain.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your purchase!\n\n")
	fmt.Fprintf(&b, "Ticket: %s\n", t.Code)
	fmt.Fprintf(&b, "Date: %s\n\n", t.PurchasedAt.Format("2006-01-02 15:04"))
	for _, line := range t.Lines {
		fmt.Fprintf(&b, "  %s x%d  %s\n", line.Title, line.Quantity, formatCents(line.Subtotal()))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", formatCents(t.AmountCents))
	return b.String()
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
