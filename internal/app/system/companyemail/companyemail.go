// Package companyemail derives a network acronym from a work email address.
package companyemail

import (
	"errors"
	"strings"
)

// ErrNotCompany is returned for addresses on public mail providers.
var ErrNotCompany = errors.New("public mail providers are not accepted")

// ErrMalformed is returned when the address has no domain.
var ErrMalformed = errors.New("the email address is malformed")

var freeMail = map[string]bool{
	"gmail.com": true, "googlemail.com": true, "yahoo.com": true, "yahoo.co.uk": true,
	"ymail.com": true, "hotmail.com": true, "outlook.com": true, "live.com": true,
	"msn.com": true, "aol.com": true, "icloud.com": true, "me.com": true,
	"mail.com": true, "gmx.com": true, "gmx.net": true, "yandex.com": true,
	"yandex.ru": true, "protonmail.com": true, "proton.me": true, "zoho.com": true,
	"mail.ru": true, "qq.com": true, "163.com": true,
}

// Domain returns the lower-cased domain of email.
func Domain(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "", ErrMalformed
	}
	return domain, nil
}

// IsCompany reports whether email is hosted on a non-public domain.
func IsCompany(email string) bool {
	d, err := Domain(email)
	return err == nil && !freeMail[d]
}

// Acronym returns the first label of the email's domain, e.g. "airqo" for
// "jane@airqo.net".
func Acronym(email string) (string, error) {
	d, err := Domain(email)
	if err != nil {
		return "", err
	}
	if freeMail[d] {
		return "", ErrNotCompany
	}
	label, _, _ := strings.Cut(d, ".")
	if label == "" {
		return "", ErrMalformed
	}
	return label, nil
}
