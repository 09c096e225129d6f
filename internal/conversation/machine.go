package conversation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"titlechat/internal/chat"
	"titlechat/internal/forms"
	"titlechat/internal/records"
	"titlechat/internal/region"
)

var (
	// ErrBusy is returned when a turn is submitted while another one is
	// still running.
	ErrBusy = errors.New("conversation: a turn is already in progress")
	// ErrUnknownChoice is returned for a button label that is not on offer.
	ErrUnknownChoice = errors.New("conversation: choice not available")
)

// Regions resolves a canonical region name to its bundle.
type Regions interface {
	Resolve(ctx context.Context, name string) (*region.Bundle, bool)
}

// Machine owns one conversation. It is safe for concurrent use, but only
// one turn runs at a time; overlapping submissions get ErrBusy.
type Machine struct {
	mu      sync.Mutex
	st      State
	lookup  records.Lookup
	regions Regions
	replier chat.Replier
	logger  *zap.Logger
}

func NewMachine(lookup records.Lookup, regions Regions, replier chat.Replier, logger *zap.Logger) *Machine {
	return &Machine{
		st:      newState(),
		lookup:  lookup,
		regions: regions,
		replier: replier,
		logger:  logger.Named("conversation"),
	}
}

// Start returns the timed greeting and moves to the intro choice.
func (m *Machine) Start() []OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.st.Mode = ModeIntroChoice
	return m.offer([]OutboundMessage{
		{Text: msgHello, HTML: true},
		{Text: msgNavigate, HTML: true, Delay: 1200 * time.Millisecond},
		{Text: msgIntroAsk, HTML: true, Delay: 2500 * time.Millisecond},
		{Choices: []string{ChoiceGeneral, ChoiceIssue}, Delay: 4 * time.Second},
	})
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.st
	st.Answers = make(map[string]string, len(m.st.Answers))
	for k, v := range m.st.Answers {
		st.Answers[k] = v
	}
	st.PendingForms = append([]string(nil), m.st.PendingForms...)
	st.offered = append([]string(nil), m.st.offered...)
	return st
}

// Submit runs one turn. Blank text with no choice is ignored.
func (m *Machine) Submit(ctx context.Context, in Input) ([]OutboundMessage, error) {
	if !m.mu.TryLock() {
		return nil, ErrBusy
	}
	defer m.mu.Unlock()

	choice := strings.TrimSpace(in.Choice)
	text := strings.TrimSpace(in.Text)
	if choice == "" && text != "" && m.isOffered(text) {
		choice = text
	}

	var (
		out []OutboundMessage
		err error
	)
	if choice != "" {
		out, err = m.choose(ctx, choice)
	} else if text != "" {
		out = m.typed(ctx, text)
	}
	if err != nil {
		return nil, err
	}
	m.logger.Debug("conversation: turn", zap.Stringer("mode", m.st.Mode), zap.Int("messages", len(out)))
	return m.offer(out), nil
}

// offer remembers the last set of buttons shown so typed labels count as
// picks.
func (m *Machine) offer(out []OutboundMessage) []OutboundMessage {
	for i := len(out) - 1; i >= 0; i-- {
		if len(out[i].Choices) > 0 {
			m.st.offered = append([]string(nil), out[i].Choices...)
			break
		}
	}
	return out
}

func (m *Machine) isOffered(label string) bool {
	for _, c := range m.st.offered {
		if strings.EqualFold(c, label) {
			return true
		}
	}
	return false
}

// ─── Choices ──────────────────────────────────────────────────────────────────

func (m *Machine) choose(ctx context.Context, choice string) ([]OutboundMessage, error) {
	st := &m.st
	switch {
	case is(choice, ChoiceGeneral) && st.Mode == ModeIntroChoice:
		return m.toStateCollection(msgGeneral), nil

	case is(choice, ChoiceIssue) && st.Mode == ModeIntroChoice:
		st.Mode = ModeRecordCheckOffer
		return []OutboundMessage{
			{Text: msgIssue},
			{Choices: []string{ChoiceRecordCheck, ChoiceSkip}, Delay: 800 * time.Millisecond},
		}, nil

	case is(choice, ChoiceRecordCheck) && st.Mode == ModeRecordCheckOffer:
		st.Mode = ModeAwaitingIdentifier
		return []OutboundMessage{{Text: msgAskID}}, nil

	case is(choice, ChoiceSkip) && st.Mode == ModeRecordCheckOffer:
		return m.toStateCollection(msgSkip), nil

	case is(choice, ChoiceRecordYes), is(choice, ChoiceRecordNo):
		// Only answerable once the code has been verified.
		if st.Mode != ModeRecordConfirm {
			return nil, nil
		}
		if is(choice, ChoiceRecordNo) {
			st.PendingRecord = nil
			return m.toStateCollection(msgOutdated), nil
		}
		return m.confirmRecord(ctx), nil

	case is(choice, ChoiceFormsYes), is(choice, ChoiceFormsNo):
		if st.Mode != ModeAwaitingFormConfirm {
			return nil, nil
		}
		return m.confirmForms(is(choice, ChoiceFormsYes)), nil
	}

	if st.Mode == ModeTopicMenu || st.Mode == ModeFreeFormQuestion {
		for _, topic := range st.Bundle.MenuTopics() {
			if is(choice, topic) {
				return m.selectTopic(topic), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
}

func is(choice, label string) bool {
	return strings.EqualFold(choice, label)
}

func (m *Machine) toStateCollection(lead string) []OutboundMessage {
	m.st.Mode = ModeStateCollection
	m.st.Step = stepState
	return []OutboundMessage{
		{Text: lead},
		{Text: msgAskState, Delay: 800 * time.Millisecond},
	}
}

func (m *Machine) confirmRecord(ctx context.Context) []OutboundMessage {
	st := &m.st
	rec := st.PendingRecord
	if rec == nil {
		return append([]OutboundMessage{{Text: msgNoPending}}, m.menu(600*time.Millisecond))
	}
	st.PendingRecord = nil

	stateName := rec.Get(records.FieldState)
	st.Answers[AnswerState] = stateName
	out := []OutboundMessage{{Text: fmt.Sprintf(msgUseState, html.EscapeString(stateName)), HTML: true}}

	m.loadRegion(ctx, stateName)
	out[0].Region = st.Region
	out = append(out, OutboundMessage{
		Text:  fmt.Sprintf(msgStatus, html.EscapeString(rec.Get(records.FieldTitleStatus))),
		HTML:  true,
		Delay: 500 * time.Millisecond,
	})
	return append(out, m.remedy(*rec)...)
}

// remedy shows the record's remedy text and offers any forms it names.
func (m *Machine) remedy(rec records.Record) []OutboundMessage {
	st := &m.st
	text := strings.TrimSpace(rec.Get(records.FieldTitleRemedy))
	if text == "" {
		return []OutboundMessage{{Text: msgNoRemedy, HTML: true}, m.menu(600 * time.Millisecond)}
	}

	out := []OutboundMessage{{Text: fmt.Sprintf(msgRemedy, html.EscapeString(text)), HTML: true}}
	lib := st.Bundle.Library()
	codes := forms.FindMentioned(text, lib)
	if len(codes) == 0 {
		return append(out, m.menu(700*time.Millisecond))
	}

	var list strings.Builder
	for _, code := range codes {
		f, _ := lib.Get(code)
		fmt.Fprintf(&list, "<li><strong>%s</strong></li>", html.EscapeString(f.Label))
	}
	st.PendingForms = codes
	st.Mode = ModeAwaitingFormConfirm
	return append(out,
		OutboundMessage{Text: fmt.Sprintf(msgFormOffer, list.String()), HTML: true},
		OutboundMessage{Choices: []string{ChoiceFormsYes, ChoiceFormsNo}},
	)
}

func (m *Machine) confirmForms(yes bool) []OutboundMessage {
	st := &m.st
	pending := st.PendingForms
	st.PendingForms = nil

	var out []OutboundMessage
	if yes && len(pending) > 0 {
		lib := st.Bundle.Library()
		for _, code := range pending {
			f, ok := lib.Get(code)
			if !ok || f.Link() == "" {
				continue
			}
			out = append(out, OutboundMessage{
				Text: fmt.Sprintf(msgFormLink, html.EscapeString(f.Label), html.EscapeString(f.Link())),
				HTML: true,
			})
		}
	} else {
		out = append(out, OutboundMessage{Text: msgNoForms})
	}
	return append(out, m.menu(800*time.Millisecond))
}

func (m *Machine) selectTopic(topic string) []OutboundMessage {
	if topic == region.TopicAskAnything {
		m.st.Mode = ModeFreeFormQuestion
		return []OutboundMessage{{Text: msgAskAny, HTML: true}}
	}
	return []OutboundMessage{{Text: m.st.Bundle.TopicResponse(topic), HTML: true, Delay: 500 * time.Millisecond}}
}

// menu shows the active region's topics. Free-form mode is sticky, so a
// menu shown from there leaves the mode alone.
func (m *Machine) menu(delay time.Duration) OutboundMessage {
	if m.st.Mode != ModeFreeFormQuestion {
		m.st.Mode = ModeTopicMenu
	}
	return OutboundMessage{Choices: m.st.Bundle.MenuTopics(), Delay: delay}
}

func (m *Machine) loadRegion(ctx context.Context, raw string) {
	name := region.Normalize(raw)
	m.st.Region = name
	m.st.Bundle, _ = m.regions.Resolve(ctx, name)
}

// ─── Typed text ───────────────────────────────────────────────────────────────

func (m *Machine) typed(ctx context.Context, text string) []OutboundMessage {
	st := &m.st
	switch st.Mode {
	case ModeAwaitingVerificationCode:
		return m.verify(text)
	case ModeAwaitingIdentifier:
		return m.checkRecord(ctx, text)
	case ModeFreeFormQuestion:
		return m.ask(ctx, text)
	case ModeStateCollection:
		return m.collectState(ctx, text)
	case ModeGreeting, ModeIntroChoice:
		return m.numberedStep(text)
	}
	return nil
}

func (m *Machine) verify(code string) []OutboundMessage {
	st := &m.st
	if code != VerificationCode || st.PendingRecord == nil {
		return []OutboundMessage{{Text: msgBadCode, HTML: true}}
	}
	rec := *st.PendingRecord
	st.Mode = ModeRecordConfirm
	summary := fmt.Sprintf(msgSummary,
		html.EscapeString(rec.Get(records.FieldVehicleYear)),
		html.EscapeString(rec.Get(records.FieldVehicleMake)),
		html.EscapeString(rec.Get(records.FieldVehicleModel)),
		html.EscapeString(rec.Get(records.FieldState)))
	return []OutboundMessage{
		{Text: summary, HTML: true},
		{Choices: []string{ChoiceRecordYes, ChoiceRecordNo}, Delay: 800 * time.Millisecond},
	}
}

func (m *Machine) checkRecord(ctx context.Context, identifier string) []OutboundMessage {
	st := &m.st
	rec, found, err := m.lookup.Lookup(ctx, identifier)
	if err != nil {
		m.logger.Warn("conversation: record lookup failed", zap.Error(err))
		found = false
	}
	if !found {
		st.Mode = ModeStateCollection
		st.Step = stepState
		return []OutboundMessage{
			{Text: msgNoRecord},
			{Text: msgAskState, Delay: time.Second},
		}
	}
	st.PendingRecord = &rec
	st.Mode = ModeAwaitingVerificationCode
	return []OutboundMessage{{Text: msgCodeSent, HTML: true}}
}

func (m *Machine) ask(ctx context.Context, question string) []OutboundMessage {
	st := &m.st
	if _, f, ok := chat.MatchForm(question, st.Bundle); ok {
		label := html.EscapeString(f.Label)
		return []OutboundMessage{{Text: fmt.Sprintf(msgDownload, label, html.EscapeString(f.Link()), label), HTML: true}}
	}
	reply, err := m.replier.Reply(ctx, question, st.Region)
	if errors.Is(err, chat.ErrNotConfigured) {
		m.logger.Warn("conversation: completion path used without an API key")
		return []OutboundMessage{{Text: chat.NotConfiguredMessage}}
	}
	if err != nil {
		m.logger.Warn("conversation: completion failed", zap.String("region", st.Region), zap.Error(err))
		return []OutboundMessage{{Text: msgAIError}}
	}
	return []OutboundMessage{{Text: reply, HTML: true}}
}

func (m *Machine) collectState(ctx context.Context, raw string) []OutboundMessage {
	st := &m.st
	name := region.Normalize(raw)
	st.Answers[AnswerState] = name
	st.Step = stepState + 1
	m.loadRegion(ctx, name)

	return []OutboundMessage{
		{Text: fmt.Sprintf(msgPerfect, html.EscapeString(name)), HTML: true, Delay: 500 * time.Millisecond, Region: name},
		m.menu(1400 * time.Millisecond),
	}
}

// numberedStep handles text typed before the intro choice: the name, then
// the phone number, then the switch to state collection.
func (m *Machine) numberedStep(text string) []OutboundMessage {
	st := &m.st
	switch st.Step {
	case 0:
		st.Answers[AnswerName] = text
		st.Step = 1
		return []OutboundMessage{{Text: m.personalize(msgAskPhone), Delay: 800 * time.Millisecond}}
	case 1:
		st.Answers[AnswerPhone] = text
		st.Step = stepState
		st.Mode = ModeStateCollection
		return []OutboundMessage{{Text: msgAskState, Delay: 800 * time.Millisecond}}
	}
	return nil
}

// personalize greets the user by name once per session.
func (m *Machine) personalize(text string) string {
	st := &m.st
	name := st.Answers[AnswerName]
	if st.greetedByName || name == "" {
		return text
	}
	st.greetedByName = true
	return fmt.Sprintf("Nice to meet you, %s. %s", name, text)
}
