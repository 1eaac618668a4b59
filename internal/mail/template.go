package mail

import (
	"bytes"
	"html/template"
)

const resetSubject = "Password Reset Request"

var resetTemplate = template.Must(template.New("reset").Parse(`<p>You requested a password reset.</p>
<p>Click <a href="{{.URL}}">here</a> to reset your password.</p>
<p>This link expires in {{.ValidFor}}.</p>
<p>If you didn't request this, please ignore this email.</p>
`))

type resetData struct {
	URL      string
	ValidFor string
}

func renderReset(data resetData) (string, error) {
	var buf bytes.Buffer
	if err := resetTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
