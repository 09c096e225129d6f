// Package session keeps live conversations in memory, keyed by a random
// id, and copies their traffic into the transcript store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"titlechat/internal/conversation"
	"titlechat/internal/models"
)

var ErrNotFound = errors.New("session: not found")

// Transcript is where session traffic is copied. *database.DB satisfies it.
type Transcript interface {
	UpsertSession(id string) error
	SetSessionRegion(id, region string) error
	InsertMessage(m *models.Message) error
	UpsertAnswers(sessionID, jsonDump string) error
}

type entry struct {
	machine *conversation.Machine

	mu     sync.Mutex
	region string
}

// Manager holds live sessions in a bounded cache. A session idle for
// longer than the ttl, or pushed out by newer ones, is forgotten.
type Manager struct {
	sessions   *expirable.LRU[string, *entry]
	newMachine func() *conversation.Machine
	store      Transcript
	logger     *zap.Logger
}

// NewManager builds a manager. store may be nil to skip transcripts.
// maxSessions zero means no cap; ttl zero keeps sessions until evicted
// by the cap.
func NewManager(newMachine func() *conversation.Machine, store Transcript, maxSessions int, ttl time.Duration, logger *zap.Logger) *Manager {
	logger = logger.Named("session")
	onEvict := func(id string, _ *entry) {
		logger.Debug("session: evicted", zap.String("session", id))
	}
	return &Manager{
		sessions:   expirable.NewLRU[string, *entry](maxSessions, onEvict, ttl),
		newMachine: newMachine,
		store:      store,
		logger:     logger,
	}
}

// Create starts a session and returns its id and greeting.
func (m *Manager) Create() (string, []conversation.OutboundMessage) {
	id := uuid.NewString()
	e := &entry{machine: m.newMachine()}
	m.sessions.Add(id, e)

	if m.store != nil {
		if err := m.store.UpsertSession(id); err != nil {
			m.logger.Warn("session: transcript upsert failed", zap.String("session", id), zap.Error(err))
		}
	}

	out := e.machine.Start()
	m.record(id, "bot", out)
	m.logger.Info("session: created", zap.String("session", id))
	return id, out
}

// Submit runs one turn for session id.
func (m *Manager) Submit(ctx context.Context, id string, in models.SessionInput) ([]conversation.OutboundMessage, error) {
	e, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	// Re-adding renews the idle deadline.
	m.sessions.Add(id, e)

	out, err := e.machine.Submit(ctx, conversation.Input{Text: in.Text, Choice: in.Choice})
	if err != nil {
		return nil, err
	}

	said := in.Choice
	if said == "" {
		said = in.Text
	}
	if strings.TrimSpace(said) != "" {
		m.record(id, "user", []conversation.OutboundMessage{{Text: said}})
	}
	m.record(id, "bot", out)
	m.persistState(id, e)
	return out, nil
}

// Len reports how many sessions are held, including any expired ones not
// yet swept.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

func (m *Manager) record(id, role string, msgs []conversation.OutboundMessage) {
	if m.store == nil {
		return
	}
	for _, msg := range msgs {
		content := msg.Text
		if len(msg.Choices) > 0 {
			content = strings.TrimSpace(content + " [" + strings.Join(msg.Choices, " | ") + "]")
		}
		if content == "" {
			continue
		}
		err := m.store.InsertMessage(&models.Message{
			ID:        uuid.NewString(),
			SessionID: id,
			Role:      role,
			Content:   content,
		})
		if err != nil {
			m.logger.Warn("session: transcript write failed", zap.String("session", id), zap.Error(err))
			return
		}
	}
}

func (m *Manager) persistState(id string, e *entry) {
	if m.store == nil {
		return
	}
	st := e.machine.Snapshot()

	e.mu.Lock()
	changed := st.Region != "" && st.Region != e.region
	if changed {
		e.region = st.Region
	}
	e.mu.Unlock()
	if changed {
		if err := m.store.SetSessionRegion(id, st.Region); err != nil {
			m.logger.Warn("session: region write failed", zap.String("session", id), zap.Error(err))
		}
	}
	if len(st.Answers) == 0 {
		return
	}
	dump, err := json.Marshal(st.Answers)
	if err != nil {
		return
	}
	if err := m.store.UpsertAnswers(id, string(dump)); err != nil {
		m.logger.Warn("session: answers write failed", zap.String("session", id), zap.Error(err))
	}
}
