package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// RgxEmail matches the W3C HTML5 email input pattern.
	RgxEmail = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

	// RgxPhoneNumber accepts international format with an optional leading plus.
	RgxPhoneNumber = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func MinRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

func IsEmail(value string) bool {
	if len(value) > 254 {
		return false
	}

	return RgxEmail.MatchString(value)
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}
