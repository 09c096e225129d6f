// Package region holds per-jurisdiction content bundles (topic answers,
// form library, menu order) and resolves a region name to its bundle.
package region

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"titlechat/internal/forms"
)

const (
	TopicAskAnything = "Ask Me Anything"
	TopicGeneralInfo = "General Information"

	ComingSoon = "This section is coming soon for your state. Try another option or ask me anything about titles."
)

// FallbackTopics is the menu shown when no bundle is loaded for a region.
var FallbackTopics = []string{TopicAskAnything, TopicGeneralInfo}

// Bundle is the content for one region.
type Bundle struct {
	Name     string              `yaml:"name" json:"regionName"`
	Forms    *forms.Library      `yaml:"forms" json:"formLibrary"`
	Keywords []forms.KeywordHint `yaml:"keywords" json:"keywords,omitempty"`
	Topics   map[string]string   `yaml:"topics" json:"topicResponses"`
	Order    []string            `yaml:"order" json:"orderedTopics"`
}

// Parse decodes a YAML bundle.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("region: parse bundle: %w", err)
	}
	if b.Name == "" {
		return nil, fmt.Errorf("region: bundle has no name")
	}
	if b.Forms == nil {
		b.Forms = forms.NewLibrary()
	}
	return &b, nil
}

// MenuTopics returns the topic menu, or FallbackTopics when b is nil or
// declares no order.
func (b *Bundle) MenuTopics() []string {
	if b == nil || len(b.Order) == 0 {
		return append([]string(nil), FallbackTopics...)
	}
	return append([]string(nil), b.Order...)
}

// TopicResponse returns the HTML answer for topic, or ComingSoon.
func (b *Bundle) TopicResponse(topic string) string {
	if b == nil {
		return ComingSoon
	}
	if resp, ok := b.Topics[topic]; ok && resp != "" {
		return resp
	}
	return ComingSoon
}

// Library returns the form library; safe on a nil bundle.
func (b *Bundle) Library() *forms.Library {
	if b == nil {
		return nil
	}
	return b.Forms
}

// Hints returns the keyword hints; safe on a nil bundle.
func (b *Bundle) Hints() []forms.KeywordHint {
	if b == nil {
		return nil
	}
	return b.Keywords
}

// MissingTopics lists ordered topics without an answer. Those fall back to
// ComingSoon at runtime; this exists so bundle authors can check.
func (b *Bundle) MissingTopics() []string {
	var missing []string
	for _, t := range b.Order {
		if t == TopicAskAnything {
			continue
		}
		if _, ok := b.Topics[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
