package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Client ──────────────────────────────────────────────────────────────────

func fakeCompletions(t *testing.T, status int, reply string, seen *completionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_SendsRequestShape(t *testing.T) {
	var seen completionRequest
	srv := fakeCompletions(t, http.StatusOK, "A lien release is...", &seen)

	c := NewClient(srv.URL, "test-key", "")
	got, err := c.Complete(context.Background(), "be helpful", "what is a lien release?")
	require.NoError(t, err)
	assert.Equal(t, "A lien release is...", got)

	assert.Equal(t, "gpt-4o-mini", seen.Model)
	assert.InDelta(t, 0.4, seen.Temperature, 1e-9)
	assert.Equal(t, 300, seen.MaxTokens)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Equal(t, "be helpful", seen.Messages[0].Content)
	assert.Equal(t, "user", seen.Messages[1].Role)
}

func TestComplete_EmptyContentIsPlaceholder(t *testing.T) {
	srv := fakeCompletions(t, http.StatusOK, "  ", nil)

	got, err := NewClient(srv.URL, "test-key", "m").Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, NoResponseReply, got)
}

func TestComplete_NonOKStatusIsError(t *testing.T) {
	srv := fakeCompletions(t, http.StatusTooManyRequests, "", nil)

	_, err := NewClient(srv.URL, "test-key", "m").Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestComplete_NoKey(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:0", "", "").Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestComplete_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "test-key", "").Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

// ─── Profiles ────────────────────────────────────────────────────────────────

func TestLoadProfiles_MissingFileUsesBuiltin(t *testing.T) {
	p, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	prompt := p.SystemPrompt("Alabama")
	assert.Contains(t, prompt, `"Title Tom"`)
	assert.Contains(t, prompt, "for the state of Alabama.")
	assert.Contains(t, prompt, "3–5 sentences")
	assert.Contains(t, prompt, "Was there something else I could help you with?")
	assert.False(t, p.Configured("Alabama"))
}

func TestParseProfiles_RegionOverridesInherit(t *testing.T) {
	p, err := ParseProfiles([]byte(`
default:
  identity: You help with titles in {region}.
  rules: [Be brief.]
  off_topic_reply: Titles only, please.
regions:
  California:
    rules: [Mention the DMV.]
`))
	require.NoError(t, err)

	assert.True(t, p.Configured("california"))
	assert.False(t, p.Configured("Texas"))

	ca := p.SystemPrompt("California")
	assert.Contains(t, ca, "You help with titles in California.")
	assert.Contains(t, ca, "Mention the DMV.")
	assert.NotContains(t, ca, "Be brief.")
	assert.Contains(t, ca, `"Titles only, please."`)

	assert.Contains(t, p.SystemPrompt("Texas"), "Be brief.")
}

func TestLoadProfiles_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default: [unclosed"), 0o600))

	_, err := LoadProfiles(path)
	assert.Error(t, err)
}
