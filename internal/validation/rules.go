// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package validation implements the field rules that gate every mutation:
// email shape, age bounds, gender normalization, title length and the
// strict DD-MM-YYYY date rules for show air and end dates.
//
// All rules are stateless predicate/normalizer functions over a single raw
// field. Structural payload checks live in payload.go; the
// go-playground/validator integration for transport request structs lives
// in validator.go.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateFormat is the wire format for all show dates (Go reference layout).
const DateFormat = "02-01-2006"

// Age bounds for a person, both inclusive.
const (
	MinAge = 1
	MaxAge = 100
)

// MaxTitleLength is the upper bound on a show title.
const MaxTitleLength = 50

// Canonical long-form gender values.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Error is a recoverable input-validation failure. It is always safe to
// report its message to the caller.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errorf builds a validation error with a formatted message.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// mailPattern: alphanumeric local part (with ._+- separators), dotted
// alphanumeric domain labels, final label at least two letters.
var mailPattern = regexp.MustCompile(`^[_A-Za-z0-9-+]+(\.[_A-Za-z0-9-]+)*@` +
	`[A-Za-z0-9-]+(\.[A-Za-z0-9]+)*(\.[A-Za-z]{2,})$`)

// datePattern rejects non-zero-padded dates before time.Parse gets a
// chance to accept them leniently.
var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// Mail validates an email address and returns it unchanged.
func Mail(mail string) (string, error) {
	if !mailPattern.MatchString(mail) {
		return "", Errorf("wrong e-mail: %s", mail)
	}
	return mail, nil
}

// Age validates that age is a plain decimal integer between MinAge and
// MaxAge inclusive, returning the parsed value.
func Age(age string) (int, error) {
	n, err := strconv.Atoi(age)
	if err != nil {
		return 0, Errorf("wrong age [%s]: not a number", age)
	}
	if n < MinAge || n > MaxAge {
		return 0, Errorf("age must be between %d and %d", MinAge, MaxAge)
	}
	return n, nil
}

// Gender validates a gender value and normalizes it to its long form.
// Accepted values are exactly male, female, m and f.
func Gender(gender string) (string, error) {
	switch gender {
	case GenderMale, "m":
		return GenderMale, nil
	case GenderFemale, "f":
		return GenderFemale, nil
	default:
		return "", Errorf("gender value [%s] is not defined", gender)
	}
}

// Title validates a show title: non-empty, at most MaxTitleLength
// characters and free of control characters. Rejecting control
// characters keeps titles safe to embed in store keys.
func Title(title string) (string, error) {
	if title == "" {
		return "", Errorf("show has empty title")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return "", Errorf("show title too long [max %d characters, but is %d]: %s",
			MaxTitleLength, n, title)
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return "", Errorf("show title contains a control character")
		}
	}
	return title, nil
}

// Date parses a date in the exact DD-MM-YYYY wire format. Lenient or
// auto-correcting inputs ("1-2-2020", "31-02-2020") are rejected.
func Date(date string) (time.Time, error) {
	if !datePattern.MatchString(date) {
		return time.Time{}, Errorf("illegal date value: %s, allowed format: DD-MM-YYYY", date)
	}
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return time.Time{}, Errorf("illegal date value: %s, allowed format: DD-MM-YYYY", date)
	}
	return t, nil
}

// FormatDate renders a date back into the wire format.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// ReleaseDate checks that a show's air date is not in the future.
func ReleaseDate(release, now time.Time) error {
	if release.After(now) {
		return Errorf("show air date [%s] is after current date [%s]",
			FormatDate(release), FormatDate(now))
	}
	return nil
}

// EndDate checks the ordering rules for an optional end date: it must be
// strictly after the release date and not in the future. Callers with no
// end date skip this check entirely; absence is a valid state.
func EndDate(end, release, now time.Time) error {
	if end.Equal(release) {
		return Errorf("show end date [%s] is equal to air date [%s]",
			FormatDate(end), FormatDate(release))
	}
	if end.Before(release) {
		return Errorf("show end date [%s] is before air date [%s]",
			FormatDate(end), FormatDate(release))
	}
	if end.After(now) {
		return Errorf("show end date [%s] is after current date [%s]",
			FormatDate(end), FormatDate(now))
	}
	return nil
}
