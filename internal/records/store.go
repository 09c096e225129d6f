package records

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Query carries the optional fields of a lookup request. Either one may
// match; an empty field never matches.
type Query struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// QueryFor builds the request body for a raw identifier: emails are sent
// as-is, phones as digits only.
func QueryFor(identifier string) Query {
	id := Classify(identifier)
	if id.IsEmail() {
		return Query{Email: id.Raw}
	}
	return Query{Phone: id.Phone}
}

func (q Query) matches(rec Record) bool {
	if phone := Digits(q.Phone); phone != "" {
		if Classify(phone).Matches(rec) {
			return true
		}
	}
	if email := strings.TrimSpace(q.Email); email != "" {
		if Classify(email).Matches(rec) {
			return true
		}
	}
	return false
}

// FileStore reads the client-records file fresh on every call. Nothing is
// cached, so edits to the file are visible to the next lookup.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Find streams the file and returns the first record matching q.
func (s *FileStore) Find(q Query) (Record, bool, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return Record{}, false, fmt.Errorf("records: open %s: %w", s.Path, err)
	}
	defer f.Close()

	r := NewReader(f)
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return Record{}, false, nil
		}
		if err != nil {
			return Record{}, false, fmt.Errorf("records: read %s: %w", s.Path, err)
		}
		if q.matches(rec) {
			return rec, true, nil
		}
	}
}
