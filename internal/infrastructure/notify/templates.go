package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

const codeTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background: #f4f4f4; border-radius: 10px;">
  <div style="background: white; padding: 30px; border-radius: 8px;">
    <h2 style="color: #333; text-align: center;">{{.Heading}}</h2>
    {{if .Name}}<p style="color: #666; font-size: 16px;">Hi {{.Name}},</p>{{end}}
    <p style="color: #666;">{{.Intro}}</p>
    <div style="background: {{.Background}}; border: 2px dashed {{.Accent}}; border-radius: 8px; padding: 15px; text-align: center; margin: 20px 0;">
      <h1 style="color: {{.Accent}}; margin: 0; letter-spacing: 5px;">{{.Code}}</h1>
    </div>
    <p style="color: #999; font-size: 12px; text-align: center;">Expires in {{.ExpiresIn}}.</p>
  </div>
</div>`

type templateData struct {
	Heading    string
	Name       string
	Intro      string
	Code       string
	ExpiresIn  string
	Accent     string
	Background string
}

type kindCopy struct {
	subject    string
	heading    string
	intro      string
	accent     string
	background string
}

var copies = map[ports.NotificationKind]kindCopy{
	ports.NotifyVerification: {
		subject:    "Verify your CampusConnect account",
		heading:    "Welcome to CampusConnect!",
		intro:      "Please verify your email address using the code below:",
		accent:     "#4f46e5",
		background: "#eef2ff",
	},
	ports.NotifyResend: {
		subject:    "Your new CampusConnect verification code",
		heading:    "New verification code",
		intro:      "Here is your new verification code. Earlier codes no longer work.",
		accent:     "#4f46e5",
		background: "#eef2ff",
	},
	ports.NotifyPasswordReset: {
		subject:    "Reset your CampusConnect password",
		heading:    "Password reset",
		intro:      "You requested a password reset. Use this code:",
		accent:     "#ff6b6b",
		background: "#fff0f0",
	},
}

// Renderer turns a Notification into an HTML email.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{tmpl: template.Must(template.New("code").Parse(codeTemplate))}
}

func (r *Renderer) Render(n ports.Notification) (ports.Email, error) {
	c, ok := copies[n.Kind]
	if !ok {
		return ports.Email{}, fmt.Errorf("render: unknown notification kind %q", n.Kind)
	}

	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, templateData{
		Heading:    c.heading,
		Name:       n.Name,
		Intro:      c.intro,
		Code:       n.Code,
		ExpiresIn:  humanDuration(n.ExpiresIn),
		Accent:     c.accent,
		Background: c.background,
	})
	if err != nil {
		return ports.Email{}, fmt.Errorf("render %s: %w", n.Kind, err)
	}

	return ports.Email{To: n.To, ToName: n.Name, Subject: c.subject, HTML: buf.String()}, nil
}

func humanDuration(d time.Duration) string {
	if d <= 0 {
		return "a few minutes"
	}
	if m := int(d.Minutes()); m >= 1 {
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return fmt.Sprintf("%d seconds", int(d.Seconds()))
}
