package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"titlechat/internal/conversation"
	"titlechat/internal/database"
	"titlechat/internal/models"
	"titlechat/internal/records"
	"titlechat/internal/region"
)

type noReplier struct{}

func (noReplier) Reply(context.Context, string, string) (string, error) { return "ok", nil }

func machineFactory(t *testing.T) func() *conversation.Machine {
	t.Helper()
	reg, err := region.Default(nil, zap.NewNop())
	require.NoError(t, err)
	lookup := records.LookupFunc(func(context.Context, string) (records.Record, bool, error) {
		return records.Record{}, false, nil
	})
	return func() *conversation.Machine {
		return conversation.NewMachine(lookup, reg, noReplier{}, zap.NewNop())
	}
}

func TestManager_CreateAndSubmit_WritesTranscript(t *testing.T) {
	db, err := database.Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewManager(machineFactory(t), db, 0, 0, zap.NewNop())
	id, greeting := m.Create()
	require.NotEmpty(t, id)
	require.Len(t, greeting, 4)

	_, err = m.Submit(context.Background(), id, models.SessionInput{Choice: conversation.ChoiceGeneral})
	require.NoError(t, err)
	out, err := m.Submit(context.Background(), id, models.SessionInput{Text: "ca"})
	require.NoError(t, err)
	assert.Equal(t, "California", out[0].Region)

	s, err := db.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "California", s.Region)

	msgs, err := db.GetRecentMessages(id, 100)
	require.NoError(t, err)
	var users []string
	for _, msg := range msgs {
		if msg.Role == "user" {
			users = append(users, msg.Content)
		}
	}
	assert.Equal(t, []string{conversation.ChoiceGeneral, "ca"}, users)
	assert.True(t, strings.Contains(msgs[3].Content, "📘 General Title Help | "), msgs[3].Content)

	answers, err := db.GetAnswers(id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"California"}`, answers)
}

func TestManager_UnknownSession(t *testing.T) {
	m := NewManager(machineFactory(t), nil, 0, 0, zap.NewNop())
	_, err := m.Submit(context.Background(), "nope", models.SessionInput{Text: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ChoiceErrorsPassThrough(t *testing.T) {
	m := NewManager(machineFactory(t), nil, 0, 0, zap.NewNop())
	id, _ := m.Create()
	_, err := m.Submit(context.Background(), id, models.SessionInput{Choice: "bogus"})
	assert.ErrorIs(t, err, conversation.ErrUnknownChoice)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := NewManager(machineFactory(t), nil, 0, 0, zap.NewNop())
	a, _ := m.Create()
	b, _ := m.Create()
	assert.NotEqual(t, a, b)

	var wg sync.WaitGroup
	for _, id := range []string{a, b} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := m.Submit(context.Background(), id, models.SessionInput{Choice: conversation.ChoiceGeneral})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()
	assert.Equal(t, 2, m.Len())
}

func TestManager_IdleSessionsExpire(t *testing.T) {
	m := NewManager(machineFactory(t), nil, 0, 50*time.Millisecond, zap.NewNop())
	id, _ := m.Create()

	time.Sleep(120 * time.Millisecond)
	_, err := m.Submit(context.Background(), id, models.SessionInput{Text: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_SubmitRenewsDeadline(t *testing.T) {
	m := NewManager(machineFactory(t), nil, 0, 300*time.Millisecond, zap.NewNop())
	id, _ := m.Create()

	for i := 0; i < 3; i++ {
		time.Sleep(150 * time.Millisecond)
		_, err := m.Submit(context.Background(), id, models.SessionInput{Text: "hello"})
		require.NoError(t, err, "turn %d", i)
	}
}

func TestManager_CapEvictsOldest(t *testing.T) {
	m := NewManager(machineFactory(t), nil, 2, 0, zap.NewNop())
	first, _ := m.Create()
	second, _ := m.Create()
	_, err := m.Submit(context.Background(), first, models.SessionInput{Text: "x"})
	require.NoError(t, err)
	m.Create()

	assert.Equal(t, 2, m.Len())
	_, err = m.Submit(context.Background(), second, models.SessionInput{Text: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Submit(context.Background(), first, models.SessionInput{Text: "x"})
	assert.NoError(t, err)
}
