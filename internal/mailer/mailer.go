package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

var ErrMissingFields = errors.New("name, email and message are required")

// Dialer opens an SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// ContactTo receives contact form messages.
	ContactTo string
	// Brand is used in subjects and greetings.
	Brand string
}

// Mailer sends the contact form and welcome messages. Without an SMTP host
// it only logs what it would have sent.
type Mailer struct {
	cfg    Config
	dialer Dialer
	log    logrus.FieldLogger
}

func New(cfg Config, log logrus.FieldLogger) *Mailer {
	var dialer Dialer
	if cfg.Host != "" {
		dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return NewWithDialer(cfg, dialer, log)
}

func NewWithDialer(cfg Config, dialer Dialer, log logrus.FieldLogger) *Mailer {
	if cfg.Brand == "" {
		cfg.Brand = "Hitaishi Fashion"
	}
	return &Mailer{cfg: cfg, dialer: dialer, log: log.WithField("component", "mailer")}
}

// ContactForm is a message submitted through the site.
type ContactForm struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

func (f ContactForm) validate() error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" || strings.TrimSpace(f.Message) == "" {
		return ErrMissingFields
	}
	return nil
}

// SendContact mails the form to the team and an acknowledgement to the
// sender, over one SMTP session.
func (m *Mailer) SendContact(form ContactForm) error {
	if err := form.validate(); err != nil {
		return err
	}

	teamBody, err := render(contactTeamTmpl, form)
	if err != nil {
		return err
	}
	ackBody, err := render(contactAckTmpl, struct {
		ContactForm
		Brand string
	}{form, m.cfg.Brand})
	if err != nil {
		return err
	}

	team := gomail.NewMessage()
	team.SetHeader("From", m.cfg.From)
	team.SetAddressHeader("Reply-To", form.Email, form.Name)
	team.SetHeader("To", m.cfg.ContactTo)
	team.SetHeader("Subject", "New Contact Message: "+form.Subject)
	team.SetBody("text/html", teamBody)

	ack := gomail.NewMessage()
	ack.SetHeader("From", m.cfg.From)
	ack.SetHeader("To", form.Email)
	ack.SetHeader("Subject", "We received your message!")
	ack.SetBody("text/html", ackBody)

	return m.send(team, ack)
}

// SendWelcome greets a freshly registered user.
func (m *Mailer) SendWelcome(firstName, email string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Welcome to "+m.cfg.Brand)
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nThank you for registering with %s!\n\nBest Regards,\nTeam %s",
		firstName, m.cfg.Brand, m.cfg.Brand,
	))
	return m.send(msg)
}

func (m *Mailer) send(msgs ...*gomail.Message) error {
	if m.dialer == nil {
		for _, msg := range msgs {
			m.log.WithFields(logrus.Fields{
				"to":      msg.GetHeader("To"),
				"subject": msg.GetHeader("Subject"),
			}).Info("SMTP not configured, mail not sent")
		}
		return nil
	}

	s, err := m.dialer.Dial()
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer s.Close()

	if err := gomail.Send(s, msgs...); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

var contactTeamTmpl = template.Must(template.New("team").Parse(`<h3>New Contact Form Message</h3>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>
`))

var contactAckTmpl = template.Must(template.New("ack").Parse(`<p>Hi {{.Name}},</p>
<p>Thank you for reaching out to <strong>{{.Brand}}</strong>! We've received your message and our team will get back to you shortly.</p>
<p><strong>Your Message:</strong></p>
<p>{{.Message}}</p>
<br>
<p>Warm regards,<br>Team {{.Brand}}</p>
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
