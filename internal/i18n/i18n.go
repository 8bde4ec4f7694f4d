// Package i18n holds the user-facing alert texts and their translations.
package i18n

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	RegisterFailed     = "register.failed"
	PasswordMismatch   = "register.password_mismatch"
	CredentialsInvalid = "authorize.credentials_invalid"
	DeviceConsent      = "authorize.device_consent"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		RegisterFailed:     "An error occurred while submitting the form. Please try again later.",
		PasswordMismatch:   "Passwords do not match.",
		CredentialsInvalid: "Invalid credentials. Try again.",
		DeviceConsent:      "A device is requesting access to your account. Allow it?",
	},
	language.Russian: {
		RegisterFailed:     "Произошла ошибка при отправке формы. Попробуйте еще раз позже.",
		PasswordMismatch:   "Пароли не совпадают.",
		CredentialsInvalid: "Неверные учетные данные. Попробуйте еще раз.",
		DeviceConsent:      "Устройство запрашивает доступ к вашей учетной записи. Разрешить?",
	},
}

var (
	cat     = newCatalog()
	matcher = language.NewMatcher(Supported())
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		keys := make([]string, 0, len(msgs))
		for k := range msgs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			// Only fails on malformed input, which the literals above are not.
			_ = b.SetString(tag, k, msgs[k])
		}
	}
	return b
}

// Supported returns the supported languages, default first.
func Supported() []language.Tag {
	return []language.Tag{language.English, language.Russian}
}

// Match returns the supported language closest to locale, or English.
func Match(locale string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return language.English
	}
	_, idx, _ := matcher.Match(tag)
	return Supported()[idx]
}

// Printer returns a printer for locale, such as "ru" or "en-US".
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Match(locale), message.Catalog(cat))
}
