package forms

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Form is one downloadable form. Bundles may give the link as either
// "path" or "url".
type Form struct {
	Label string `yaml:"label" json:"label"`
	Path  string `yaml:"path,omitempty" json:"path,omitempty"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Link returns the retrieval link, preferring Path.
func (f Form) Link() string {
	if f.Path != "" {
		return f.Path
	}
	return f.URL
}

// Library maps form codes to forms and remembers declaration order, which
// is the order matches are reported in.
type Library struct {
	codes []string
	forms map[string]Form
}

func NewLibrary() *Library {
	return &Library{forms: make(map[string]Form)}
}

// Add registers or replaces a form. Replacing keeps the original position.
func (l *Library) Add(code string, f Form) {
	if l.forms == nil {
		l.forms = make(map[string]Form)
	}
	if _, ok := l.forms[code]; !ok {
		l.codes = append(l.codes, code)
	}
	l.forms[code] = f
}

func (l *Library) Get(code string) (Form, bool) {
	if l == nil {
		return Form{}, false
	}
	f, ok := l.forms[code]
	return f, ok
}

// Codes returns the form codes in declaration order.
func (l *Library) Codes() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.codes...)
}

func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.codes)
}

// UnmarshalYAML reads a mapping of code to form, keeping document order.
func (l *Library) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("forms: library must be a mapping, got line %d", node.Line)
	}
	*l = Library{forms: make(map[string]Form, len(node.Content)/2)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var f Form
		if err := node.Content[i+1].Decode(&f); err != nil {
			return fmt.Errorf("forms: decode %q: %w", node.Content[i].Value, err)
		}
		l.Add(node.Content[i].Value, f)
	}
	return nil
}

func (l *Library) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(l.forms)
}

// KeywordHint sends a phrase to a form code, e.g. "power of attorney".
type KeywordHint struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Code    string `yaml:"code" json:"code"`
}
