package utils

import (
	"bytes"
	"html/template"

	"gym_booking/model"

	"gopkg.in/gomail.v2"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<p>Hi {{.Username}},</p>
<p>Your place in <strong>{{.Title}}</strong> is confirmed.</p>
<p>Starts: {{.Start}}<br>Ends: {{.End}}</p>
<p>Reservation code: <strong>{{.Code}}</strong></p>
{{if .Note}}<p>Your note: {{.Note}}</p>{{end}}`))

type confirmationData struct {
	Username string
	Title    string
	Start    string
	End      string
	Code     string
	Note     string
}

// Sender delivers prepared messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from   string
	sender Sender
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{from: from, sender: gomail.NewDialer(host, port, username, password)}
}

func NewMailerWithSender(from string, sender Sender) *Mailer {
	return &Mailer{from: from, sender: sender}
}

func (m *Mailer) SendReservationConfirmation(account model.Account, session model.Session, r model.Reservation) error {
	data := confirmationData{
		Username: account.Username,
		Title:    session.Title,
		Start:    session.StartTime.Format("Mon 02 Jan 2006 15:04 MST"),
		End:      session.EndTime.Format("Mon 02 Jan 2006 15:04 MST"),
		Code:     r.Code,
	}
	if r.Note != nil {
		data.Note = *r.Note
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, data); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", account.Email)
	msg.SetHeader("Subject", "Booking confirmed: "+session.Title+" ("+r.Code+")")
	msg.SetBody("text/html", body.String())
	return m.sender.DialAndSend(msg)
}
