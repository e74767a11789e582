// Package email sends the plain-text notices that accompany realtime
// notifications. A console backend stands in when no Sendgrid key is
// configured, so local runs never reach the network.
package email

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/edunest/school-back/internal/logger"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

// Service delivers messages best-effort: failures are logged, never
// returned, so a broken mail provider cannot fail a request.
type Service interface {
	Send(messages ...Message)
}

func NewService(apiKey, from string) Service {
	if apiKey == "" {
		return &consoleService{log: logger.With("email")}
	}
	return &sendgridService{key: apiKey, from: from, log: logger.With("email")}
}

type consoleService struct {
	log zerolog.Logger
}

func (svc *consoleService) Send(messages ...Message) {
	for _, msg := range messages {
		svc.log.Info().
			Strs("to", msg.To).
			Str("subject", msg.Subject).
			Str("body", msg.Body).
			Msg("email (console)")
	}
}

type sendgridService struct {
	key  string
	from string
	log  zerolog.Logger
}

func (svc *sendgridService) Send(messages ...Message) {
	for _, msg := range messages {
		msg := msg
		go svc.send(msg)
	}
}

func (svc *sendgridService) send(msg Message) {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", svc.from))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))

	req := sendgrid.GetRequest(svc.key, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		svc.log.Error().Err(err).Str("subject", msg.Subject).Msg("sending email")
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.log.Error().Int("status", res.StatusCode).Str("body", res.Body).Msg("sending email")
	}
}
