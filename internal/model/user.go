package model

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// User represents a registered player as stored in the `users` table.
// Registration is a find-or-create keyed on UniqueKey, so submitting the
// same identifying data twice never creates a second row.
//
// Fields:
//  ID         – primary key identifier of the user.
//  Name       – first name as submitted.
//  Surname    – family name as submitted.
//  Phone      – phone number used for WhatsApp notification.
//  NationalID – national identity card reference (CNI).
//  Email      – optional contact email; not part of the identity key.
//  UniqueKey  – normalized identity key (see IdentityKey).
//  CreatedAt  – timestamp of first registration.
type User struct {
	ID         uint64    // users.id
	Name       string    // users.name
	Surname    string    // users.surname
	Phone      string    // users.phone
	NationalID string    // users.national_id
	Email      string    // users.email (may be empty)
	UniqueKey  string    // users.unique_key (unique index)
	CreatedAt  time.Time // users.created_at
}

// deaccent removes combining marks after NFD decomposition, so that
// "Aïssatou" and "Aissatou" produce the same identity key.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeField lower-cases a value, strips accents and removes all
// whitespace. The result is stable across casing and spacing variants of
// the same submitted value.
func normalizeField(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), "")
}

// IdentityKey derives the unique_key for a user from the four identifying
// fields, pipe-separated. Email deliberately does not participate: two
// submissions that differ only in email are still the same person.
func IdentityKey(name, surname, phone, nationalID string) string {
	return strings.Join([]string{
		normalizeField(name),
		normalizeField(surname),
		normalizeField(phone),
		normalizeField(nationalID),
	}, "|")
}
