// Package mail sends appointment confirmations over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"gopkg.in/gomail.v2"

	"imobdesk/server/internal/models"
)

type Sender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewSender(host string, port int, user, password, from string) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

// Enabled reports whether SMTP is configured
func (s *Sender) Enabled() bool {
	return s != nil && s.host != ""
}

const confirmationTemplate = `<html>
<body>
  <p>Olá {{.ClientName}},</p>
  <p>Sua visita está confirmada:</p>
  <ul>
    <li><strong>Data:</strong> {{.Date}}</li>
    <li><strong>Horário:</strong> {{.Time}}</li>
    <li><strong>Corretor:</strong> {{.BrokerName}}</li>
  </ul>
  <p>Em caso de imprevisto, responda este email para reagendar.</p>
  <p>Equipe ImobDesk</p>
</body>
</html>`

type confirmationData struct {
	ClientName string
	Date       string
	Time       string
	BrokerName string
}

// SendAppointmentConfirmation emails the client a visit confirmation
func (s *Sender) SendAppointmentConfirmation(to string, appointment models.Appointment, brokerName string) error {
	if !s.Enabled() {
		return nil
	}

	t, err := template.New("confirmation").Parse(confirmationTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	data := confirmationData{
		ClientName: appointment.ClientName,
		Date:       appointment.StartsAt.Format("02/01/2006"),
		Time:       appointment.StartsAt.In(time.Local).Format("15:04"),
		BrokerName: brokerName,
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Visita confirmada - %s", data.Date))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}
