// Package conversation is the Title Tom dialogue: a headless state machine
// that takes one user input at a time and returns the bot's replies.
package conversation

import (
	"time"

	"titlechat/internal/records"
	"titlechat/internal/region"
)

type Mode int

const (
	ModeGreeting Mode = iota
	ModeIntroChoice
	ModeRecordCheckOffer
	ModeAwaitingIdentifier
	ModeAwaitingVerificationCode
	ModeRecordConfirm
	ModeStateCollection
	ModeAwaitingFormConfirm
	ModeTopicMenu
	ModeFreeFormQuestion
)

var modeNames = [...]string{
	"greeting", "intro_choice", "record_check_offer", "awaiting_identifier",
	"awaiting_verification_code", "record_confirm", "state_collection",
	"awaiting_form_confirm", "topic_menu", "free_form_question",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Answer keys collected by the numbered steps.
const (
	AnswerName  = "name"
	AnswerPhone = "phone"
	AnswerState = "state"
)

// stepState is the numbered step index that means "ask for the state".
const stepState = 2

// State is everything a session remembers between turns.
type State struct {
	Mode    Mode
	Answers map[string]string
	Step    int

	// Region is the canonical name of the active region; Bundle is nil
	// when no content was found for it.
	Region string
	Bundle *region.Bundle

	// PendingRecord is set between a correct verification code and the
	// user's confirm or deny.
	PendingRecord *records.Record
	// PendingForms is set between a remedy form offer and its yes or no.
	PendingForms []string

	greetedByName bool
	offered       []string
}

func newState() State {
	return State{Mode: ModeGreeting, Answers: make(map[string]string)}
}

// Input is one user action. Choice is the label of a button the user
// picked; Text is what they typed.
type Input struct {
	Text   string
	Choice string
}

// OutboundMessage is one bot message. Delay is the offset from the start
// of the turn at which the message should appear. Region is set on the
// message that switches the active region.
type OutboundMessage struct {
	Text    string        `json:"text,omitempty"`
	HTML    bool          `json:"html,omitempty"`
	Choices []string      `json:"choices,omitempty"`
	Delay   time.Duration `json:"-"`
	Region  string        `json:"region,omitempty"`
}
