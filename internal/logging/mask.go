package logging

import (
	"strings"
	"unicode/utf8"
)

// MaskEmail hides the local part of an email address except its first
// character: "test@example.com" becomes "t****@example.com". Values without
// an "@" or with a one-character local part collapse to "****".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return "****"
	}
	_, size := utf8.DecodeRuneInString(email)
	if at <= size {
		return "****"
	}
	return email[:size] + "****" + email[at:]
}
