// Package chat answers free-form title questions: a direct form link when
// the question names a known form, otherwise a language-model completion.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"titlechat/internal/forms"
	"titlechat/internal/llm"
	"titlechat/internal/region"
)

// DefaultRegion is assumed when a request names no state.
const DefaultRegion = "Alabama"

// NotConfiguredMessage is what users see when the model is needed but no
// API key is set.
const NotConfiguredMessage = "OpenAI API key not configured on the server."

var (
	ErrEmptyMessage  = errors.New("chat: userMessage is required")
	ErrNotConfigured = errors.New("chat: completion API key not configured")
)

// Replier answers one question asked in the context of a region.
type Replier interface {
	Reply(ctx context.Context, message, regionName string) (string, error)
}

// Completer is the model call; *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Service struct {
	regions   *region.Registry
	profiles  *llm.Profiles
	completer Completer
	hasKey    bool
	logger    *zap.Logger
}

// NewService wires the form matcher and the model. hasKey false makes
// every question that needs the model fail with ErrNotConfigured.
func NewService(regions *region.Registry, profiles *llm.Profiles, completer Completer, hasKey bool, logger *zap.Logger) *Service {
	return &Service{
		regions:   regions,
		profiles:  profiles,
		completer: completer,
		hasKey:    hasKey,
		logger:    logger.Named("chat"),
	}
}

// Reply returns the answer to message. An empty regionName means
// DefaultRegion.
func (s *Service) Reply(ctx context.Context, message, regionName string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	name := region.Normalize(regionName)
	if name == "" {
		name = DefaultRegion
	}

	if b, ok := s.regions.Resolve(ctx, name); ok {
		if code, f, ok := MatchForm(message, b); ok {
			s.logger.Info("chat: form short-circuit", zap.String("region", name), zap.String("form", code))
			return OpenFormReply(f), nil
		}
	}

	if !s.hasKey {
		return "", ErrNotConfigured
	}

	reply, err := s.completer.Complete(ctx, s.profiles.SystemPrompt(name), message)
	if err != nil {
		return "", fmt.Errorf("chat: completion for %s: %w", name, err)
	}
	return reply, nil
}

// MatchForm finds the form a question points at within a region bundle.
// A nil bundle matches nothing.
func MatchForm(message string, b *region.Bundle) (string, forms.Form, bool) {
	return forms.Resolve(message, b.Library(), b.Hints())
}

func OpenFormReply(f forms.Form) string {
	return fmt.Sprintf(`📄 <strong>%s</strong><br><br>👉 <a href="%s" target="_blank"><strong>Open Form</strong></a>`,
		f.Label, f.Link())
}
