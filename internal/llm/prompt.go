package llm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type profileYAML struct {
	Identity      string   `yaml:"identity"`
	Rules         []string `yaml:"rules"`
	OffTopicReply string   `yaml:"off_topic_reply"`
}

type promptsYAML struct {
	Default profileYAML            `yaml:"default"`
	Regions map[string]profileYAML `yaml:"regions"`
}

// builtinDefault is used when no prompts file is present.
var builtinDefault = profileYAML{
	Identity: `You are "Title Tom" — a friendly, professional title specialist for the state of {region}.`,
	Rules:    []string{"Keep responses concise (3–5 sentences)."},
	OffTopicReply: "I'm here to provide you with real-time information regarding your title questions. " +
		"Was there something else I could help you with?",
}

// Profiles holds the compiled system instructions, one per configured
// region plus a default.
type Profiles struct {
	def     profileYAML
	regions map[string]profileYAML
}

// LoadProfiles reads the YAML prompt profiles. A missing file yields the
// built-in default with no region-specific profiles.
func LoadProfiles(path string) (*Profiles, error) {
	p := &Profiles{def: builtinDefault, regions: map[string]profileYAML{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("llm: read prompts: %w", err)
	}
	if err := p.parse(data); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseProfiles compiles profiles from YAML bytes.
func ParseProfiles(data []byte) (*Profiles, error) {
	p := &Profiles{def: builtinDefault, regions: map[string]profileYAML{}}
	if err := p.parse(data); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profiles) parse(data []byte) error {
	var y promptsYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return fmt.Errorf("llm: parse prompts YAML: %w", err)
	}
	if y.Default.Identity != "" {
		p.def = y.Default
	}
	for name, prof := range y.Regions {
		p.regions[strings.ToLower(strings.TrimSpace(name))] = prof
	}
	return nil
}

// Configured reports whether region has its own profile.
func (p *Profiles) Configured(region string) bool {
	_, ok := p.regions[strings.ToLower(strings.TrimSpace(region))]
	return ok
}

// SystemPrompt compiles the instruction for region, using the region's
// profile when configured and the default otherwise. Empty fields of a
// region profile inherit from the default.
func (p *Profiles) SystemPrompt(region string) string {
	prof := p.def
	if rp, ok := p.regions[strings.ToLower(strings.TrimSpace(region))]; ok {
		if rp.Identity != "" {
			prof.Identity = rp.Identity
		}
		if len(rp.Rules) > 0 {
			prof.Rules = rp.Rules
		}
		if rp.OffTopicReply != "" {
			prof.OffTopicReply = rp.OffTopicReply
		}
	}
	if region == "" {
		region = "your state"
	}

	var b strings.Builder
	b.WriteString(strings.ReplaceAll(prof.Identity, "{region}", region))
	for _, r := range prof.Rules {
		b.WriteString("\n")
		b.WriteString(strings.ReplaceAll(r, "{region}", region))
	}
	if prof.OffTopicReply != "" {
		fmt.Fprintf(&b, "\nOnly answer title-related questions; otherwise reply exactly:\n%q", prof.OffTopicReply)
	}
	return b.String()
}
