package emailtemplates

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// Message types of the account mails.
const (
	MESSAGE_TYPE_EMAIL_VERIFICATION = "email-verification"
	MESSAGE_TYPE_PASSWORD_RESET     = "password-reset"
)

const defaultVerificationTemplate = `<html><body>
<p>Hello {{.username}},</p>
<p>Please confirm your email address by opening the link below:</p>
<p><a href="{{.link}}">{{.link}}</a></p>
<p>The link is valid for {{.validUntil}}.</p>
</body></html>`

const defaultPasswordResetTemplate = `<html><body>
<p>Hello {{.username}},</p>
<p>A password reset was requested for your account. Open the link below to choose a new password:</p>
<p><a href="{{.link}}">{{.link}}</a></p>
<p>The link is valid for {{.validUntil}}. If you did not request this, you can ignore this mail.</p>
</body></html>`

var builtInTemplates = map[string]string{
	MESSAGE_TYPE_EMAIL_VERIFICATION: defaultVerificationTemplate,
	MESSAGE_TYPE_PASSWORD_RESET:     defaultPasswordResetTemplate,
}

// GetTemplate returns the template definition for a message type,
// preferring an override file <messageType>.html in overrideDir when
// one exists.
func GetTemplate(overrideDir string, messageType string) (string, error) {
	if overrideDir != "" {
		content, err := os.ReadFile(filepath.Join(overrideDir, messageType+".html"))
		if err == nil {
			return string(content), nil
		}
	}
	tDef, ok := builtInTemplates[messageType]
	if !ok {
		return "", fmt.Errorf("no template defined for message type %s", messageType)
	}
	return tDef, nil
}

func ResolveTemplate(tempName string, templateDef string, contentInfos map[string]string) (content string, err error) {
	if strings.TrimSpace(templateDef) == "" {
		return "", errors.New("empty template `" + tempName)
	}
	tmpl, err := template.New(tempName).Parse(templateDef)
	if err != nil {
		err = fmt.Errorf("error when parsing template %s: %v", tempName, err)
		return "", err
	}
	var tpl bytes.Buffer

	err = tmpl.Execute(&tpl, contentInfos)
	if err != nil {
		err = fmt.Errorf("error during executing template %s: %v", tempName, err)
		return "", err
	}
	return tpl.String(), nil
}

// CheckAllTemplatesParsable resolves every known message type once with
// an empty payload, including override files.
func CheckAllTemplatesParsable(overrideDir string) error {
	for messageType := range builtInTemplates {
		tDef, err := GetTemplate(overrideDir, messageType)
		if err != nil {
			return err
		}
		if _, err := ResolveTemplate(messageType, tDef, map[string]string{}); err != nil {
			return errors.New("could not resolve template for `" + messageType + "` - error: " + err.Error())
		}
	}
	return nil
}
