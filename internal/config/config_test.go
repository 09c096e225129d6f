package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	c := Load(zap.NewNop())

	assert.Equal(t, "3000", c.Port)
	assert.Equal(t, "gpt-4o-mini", c.OpenAIModel)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.False(t, c.HasCompletionKey(), "missing key must not be fatal")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("OPENAI_API_KEY", "  sk-test  ")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	c := Load(zap.NewNop())

	assert.Equal(t, "8088", c.Port)
	assert.Equal(t, "sk-test", c.OpenAIAPIKey)
	assert.True(t, c.HasCompletionKey())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.AllowedOrigins)
}
