package mail

import (
	"fmt"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// RunNotifier emails sync run progress to the operations mailbox. Delivery
// problems are logged and swallowed, a broken notifier must never fail a run.
type RunNotifier struct {
	apiKey string
	from   string
	to     string
}

func NewRunNotifier(apiKey, from, to string) *RunNotifier {
	return &RunNotifier{apiKey: apiKey, from: from, to: to}
}

func (n *RunNotifier) Notify(subject, body string) {
	sender := mail.NewEmail("HackerRanker", n.from)
	recipient := mail.NewEmail("", n.to)

	htmlBody := "<p>" + strings.ReplaceAll(body, "\n", "<br>") + "</p>"
	message := mail.NewSingleEmail(sender, "[HackerRanker] "+subject, recipient, body, htmlBody)

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.Send(message)
	if err != nil {
		log.Printf("Failed to send run notification: %v", err)
		return
	}
	if response.StatusCode >= 400 {
		log.Printf("Failed to send run notification: %s",
			fmt.Sprintf("sendgrid error: %d - %s", response.StatusCode, response.Body))
	}
}
