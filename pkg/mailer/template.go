package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	"time"
)

// VerificationData feeds the verification email template.
type VerificationData struct {
	Code      string
	ExpiresIn string
	AppName   string
}

var verificationTmpl = htmpl.Must(htmpl.New("verification").Parse(`<!DOCTYPE html>
<html lang="es">
<body style="font-family:Arial,Helvetica,sans-serif;background:#f4f4f7;margin:0;padding:24px">
  <div style="max-width:480px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px">
    <h2 style="margin-top:0;color:#1a1a2e">{{.AppName}}</h2>
    <p>Tu código de verificación es:</p>
    <p style="font-size:32px;letter-spacing:8px;font-weight:bold;text-align:center;color:#1a1a2e">{{.Code}}</p>
    <p>El código vence en {{.ExpiresIn}}. Si no solicitaste este código, ignora este correo.</p>
  </div>
</body>
</html>`))

// RenderVerification builds the text and HTML bodies of the verification
// code email.
func RenderVerification(appName, code string, ttl time.Duration) (text, html string, err error) {
	expires := formatTTL(ttl)
	text = fmt.Sprintf("Tu código de verificación es %s. Vence en %s.", code, expires)

	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, VerificationData{
		Code:      code,
		ExpiresIn: expires,
		AppName:   appName,
	}); err != nil {
		return text, "", err
	}
	return text, buf.String(), nil
}

func formatTTL(ttl time.Duration) string {
	mins := int(ttl.Minutes())
	if mins <= 1 {
		return "1 minuto"
	}
	return fmt.Sprintf("%d minutos", mins)
}
