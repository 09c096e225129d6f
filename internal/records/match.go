package records

import "strings"

// Identifier is a user-supplied email address or phone number.
type Identifier struct {
	Raw   string
	Email string // lowercased; empty for phone identifiers
	Phone string // digits only; empty for email identifiers
}

// Classify treats anything containing "@" as an email and everything else
// as a phone number.
func Classify(raw string) Identifier {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "@") {
		return Identifier{Raw: raw, Email: strings.ToLower(raw)}
	}
	return Identifier{Raw: raw, Phone: Digits(raw)}
}

func (id Identifier) IsEmail() bool {
	return id.Email != ""
}

func (id Identifier) Empty() bool {
	return id.Email == "" && id.Phone == ""
}

// Digits strips every non-digit character.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Matches reports whether rec belongs to id. Email identifiers compare
// against the first header containing "email", phone identifiers against
// the first header containing "phone".
func (id Identifier) Matches(rec Record) bool {
	if id.IsEmail() {
		email, _ := rec.FieldLike("email")
		email = strings.ToLower(strings.TrimSpace(email))
		return email != "" && email == id.Email
	}
	if id.Phone == "" {
		return false
	}
	phone, _ := rec.FieldLike("phone")
	phone = Digits(phone)
	return phone != "" && phone == id.Phone
}

// Match returns the first record in rs that belongs to identifier. The
// boolean is false when nothing matches; that is a normal outcome.
func Match(identifier string, rs []Record) (Record, bool) {
	return Classify(identifier).find(rs)
}

func (id Identifier) find(rs []Record) (Record, bool) {
	if id.Empty() {
		return Record{}, false
	}
	for _, rec := range rs {
		if id.Matches(rec) {
			return rec, true
		}
	}
	return Record{}, false
}
