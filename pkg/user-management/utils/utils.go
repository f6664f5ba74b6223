package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	USERNAME_MIN_LEN = 5
	USERNAME_MAX_LEN = 30

	PASSWORD_MIN_LEN = 8
	PASSWORD_MAX_LEN = 30
)

var usernameRule = regexp.MustCompile("^[a-zA-Z0-9]+$")

func SanitizeEmail(email string) string {
	email = strings.ToLower(email)
	email = strings.Trim(email, " \n\r")
	return email
}

// CheckEmailFormat to check if input string is a correct email address
func CheckEmailFormat(email string) bool {
	if len(email) > 254 {
		return false
	}
	_, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// additional regex check for correct email format
	emailRule := regexp.MustCompile(`^[a-zA-Z0-9._%+'-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRule.MatchString(email)
}

// CheckUsernameFormat to check if a username is 5-30 alphanumeric characters
func CheckUsernameFormat(username string) bool {
	ul := len(username)
	if ul < USERNAME_MIN_LEN || ul > USERNAME_MAX_LEN {
		return false
	}
	return usernameRule.MatchString(username)
}

// CheckPasswordFormat to check if password fulfills password rules
func CheckPasswordFormat(password string) bool {
	pl := len(password)
	return pl >= PASSWORD_MIN_LEN && pl <= PASSWORD_MAX_LEN
}

// BlurEmailAddress transforms an email address to reduce exposed personal info
func BlurEmailAddress(email string) string {
	items := strings.Split(email, "@")
	if len(items) < 1 || len(items[0]) < 1 {
		return "****@**"
	}

	blurredEmail := string([]rune(items[0])[0]) + "****@" + strings.Join(items[1:], "")
	return blurredEmail
}
