package session

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail приводит email к канонической форме: нижний регистр, без
// окружающих пробелов. Одна и та же почта должна давать один и тот же
// authSecret на любом устройстве.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePassphrase нормализует парольную фразу в NFKD и обрезает пробелы.
// Без этого один и тот же пароль, набранный на разных клавиатурах, дает
// разные байты и, значит, разные ключи.
func NormalizePassphrase(passphrase string) string {
	return norm.NFKD.String(strings.TrimSpace(passphrase))
}
