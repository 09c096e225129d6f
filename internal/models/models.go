package models

import "time"

// ─── HTTP payloads ───────────────────────────────────────────────────────────

type ChatRequest struct {
	UserMessage string `json:"userMessage"`
	State       string `json:"state,omitempty"`
}

// ChatResponse carries either a reply or an error message, never both.
type ChatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// SessionInput advances a session. Choice is a button label; Text is
// anything typed. When both are set Choice wins.
type SessionInput struct {
	Text   string `json:"text,omitempty"`
	Choice string `json:"choice,omitempty"`
}

// Transcript is the stored history of one session as served over HTTP.
type Transcript struct {
	ID        string            `json:"id"`
	Region    string            `json:"region,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Answers   map[string]string `json:"answers,omitempty"`
	Messages  []TranscriptLine  `json:"messages"`
}

type TranscriptLine struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ─── Database models ─────────────────────────────────────────────────────────

type Session struct {
	ID        string    `db:"id"`
	Region    string    `db:"region"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Message struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	Role      string    `db:"role"` // "user" | "bot"
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// ─── LLM contract ────────────────────────────────────────────────────────────

type LLMMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
