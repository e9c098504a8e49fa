package pipeline

import (
	"strings"
	"time"
)

// dateLayouts are the source timestamp formats, tried in this fixed order.
// First match wins.
var dateLayouts = []string{
	"02-01-2006-15-04", // DD-MM-YYYY-HH-MM
	"2006/01/02 15:04", // YYYY/MM/DD HH:MM
}

// canonicalDateLayout is the single output format all parsed dates become.
const canonicalDateLayout = "02/01/2006 15:04:05"

// NormalizeDate canonicalizes a timestamp cell. nil stays nil, and a value
// matching none of the known layouts becomes nil as well; malformed dates
// are dropped per value, never reported as errors.
func NormalizeDate(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(ValueString(v))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalDateLayout)
		}
	}
	return nil
}

// UpperCase uppercases a string unless it already is fully upper-case.
// Applied to user_id on both sides of the join, so it has to be
// deterministic and idempotent.
func UpperCase(s string) string {
	if up := strings.ToUpper(s); up != s {
		return up
	}
	return s
}

// MaskEmail redacts the local part of an email, keeping the first character
// and everything from '@' on. Length and anchors are preserved, so
// "a@b.com" masks to itself and "ab@c.de" to "a*@c.de".
//
// Inputs without a character before '@' violate the upstream contract; they
// are returned unchanged rather than masked.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}

// MaskNationalID keeps the first three characters and replaces the rest
// with 'X'. Values shorter than three characters pass through unchanged.
func MaskNationalID(v interface{}) string {
	id := ValueString(v)
	if len(id) <= 3 {
		return id
	}
	return id[:3] + strings.Repeat("X", len(id)-3)
}
