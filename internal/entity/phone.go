package entity

import (
	"errors"
	"regexp"
	"strings"
)

var (
	e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	nonDigits   = regexp.MustCompile(`\D`)
	ErrBadPhone = errors.New("invalid phone number")
)

// NormalizePhone converts user input into E.164 form.
//
// Inputs already carrying a leading + keep their digits verbatim. A bare
// 10-digit number gets the default country code prefixed. Anything else is
// prefixed with + as-is and has to pass E.164 validation on its own.
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return "", ErrBadPhone
	}

	var normalized string
	switch {
	case strings.HasPrefix(strings.TrimSpace(raw), "+"):
		normalized = "+" + digits
	case len(digits) == 10 && defaultCountryCode != "":
		normalized = defaultCountryCode + digits
	default:
		normalized = "+" + digits
	}

	if !e164Pattern.MatchString(normalized) {
		return "", ErrBadPhone
	}
	return normalized, nil
}
