// Package records reads the client-records CSV and finds the record that
// belongs to an email address or phone number.
package records

import (
	"encoding/json"
	"sort"
	"strings"
)

// Well-known header names in the client-records file.
const (
	FieldEmail        = "client email"
	FieldPhone        = "client phone"
	FieldVehicleYear  = "vehicle year"
	FieldVehicleMake  = "vehicle make"
	FieldVehicleModel = "vehicle model"
	FieldState        = "state"
	FieldTitleStatus  = "internal title status"
	FieldTitleRemedy  = "title remedy"
)

// Record is one client row. Keys keeps header order so that lenient
// lookups by substring resolve deterministically.
type Record struct {
	Keys   []string
	Values map[string]string
}

func newRecord(headers, row []string) Record {
	r := Record{
		Keys:   make([]string, 0, len(headers)),
		Values: make(map[string]string, len(headers)),
	}
	for i, h := range headers {
		v := ""
		if i < len(row) {
			v = row[i]
		}
		if _, dup := r.Values[h]; !dup {
			r.Keys = append(r.Keys, h)
		}
		r.Values[h] = v
	}
	return r
}

// FromMap builds a Record from a decoded JSON object. Keys are lowercased
// and sorted so FieldLike stays deterministic.
func FromMap(m map[string]string) Record {
	r := Record{Values: make(map[string]string, len(m))}
	for k, v := range m {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, dup := r.Values[key]; !dup {
			r.Keys = append(r.Keys, key)
		}
		r.Values[key] = v
	}
	sort.Strings(r.Keys)
	return r
}

// Get returns the value stored under the exact header name.
func (r Record) Get(key string) string {
	return r.Values[key]
}

// FieldLike returns the value of the first header, in header order, whose
// name contains substr. The second result is false when no header matches.
func (r Record) FieldLike(substr string) (string, bool) {
	for _, k := range r.Keys {
		if strings.Contains(k, substr) {
			return r.Values[k], true
		}
	}
	return "", false
}

// Map returns a copy of the record suitable for JSON encoding.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		out[k] = v
	}
	return out
}

func (r Record) IsZero() bool {
	return len(r.Values) == 0
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Values)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = FromMap(m)
	return nil
}
