// Package flow implements the FARMA advisory conversation.
//
// A Machine owns no session state of its own: each turn loads the session
// from the store, runs one transition of the state machine, and saves it
// back. Turns for the same session are serialized.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/geo"
	"github.com/LikhithKalle/FARMA-Project/internal/i18n"
	"github.com/LikhithKalle/FARMA-Project/internal/metrics"
	"github.com/LikhithKalle/FARMA-Project/internal/models"
	"github.com/LikhithKalle/FARMA-Project/internal/recommend"
	"github.com/LikhithKalle/FARMA-Project/internal/store"
	"github.com/google/uuid"
)

// ResetKeywords restart the conversation from any state. Matching is
// case-insensitive against the normalized input.
var ResetKeywords = []string{"reset", "start over", "restart", "hi", "hello"}

// ChannelKeyPrefix namespaces sessions owned by ProcessChannel. Process never
// resumes a session under this prefix.
const ChannelKeyPrefix = "channel:"

// ChannelSessionID returns the stored session id for a channel key.
func ChannelSessionID(key string) string {
	return ChannelKeyPrefix + key
}

// Opts holds configuration options for the Machine.
type Opts struct {
	Now           func() time.Time
	ResetKeywords []string
	NewSessionID  func() string
}

// Option defines a configuration option for the Machine.
type Option func(*Opts)

// WithClock overrides the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		if now != nil {
			o.Now = now
		}
	}
}

// WithResetKeywords replaces the default reset keyword set.
func WithResetKeywords(keywords ...string) Option {
	return func(o *Opts) {
		o.ResetKeywords = keywords
	}
}

// WithSessionIDGenerator overrides how ids for new sessions are minted.
func WithSessionIDGenerator(gen func() string) Option {
	return func(o *Opts) {
		if gen != nil {
			o.NewSessionID = gen
		}
	}
}

// Machine is the conversation state machine.
type Machine struct {
	store  store.SessionStore
	table  *i18n.Table
	lookup geo.Lookup
	engine recommend.Recommender

	resetKeywords map[string]bool
	now           func() time.Time
	newSessionID  func() string
	locks         sessionLocks
}

// NewMachine creates a Machine. A nil lookup disables geocoding and a nil
// table uses the built-in translations.
func NewMachine(st store.SessionStore, table *i18n.Table, lookup geo.Lookup, engine recommend.Recommender, opts ...Option) *Machine {
	cfg := Opts{
		Now:           time.Now,
		ResetKeywords: ResetKeywords,
		NewSessionID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if table == nil {
		table = i18n.New()
	}
	if lookup == nil {
		lookup = geo.NoopLookup{}
	}

	keywords := make(map[string]bool, len(cfg.ResetKeywords))
	for _, k := range cfg.ResetKeywords {
		keywords[strings.ToLower(strings.TrimSpace(k))] = true
	}

	slog.Debug("flow.NewMachine: machine created", "resetKeywords", len(keywords))
	return &Machine{
		store:         st,
		table:         table,
		lookup:        lookup,
		engine:        engine,
		resetKeywords: keywords,
		now:           cfg.Now,
		newSessionID:  cfg.NewSessionID,
	}
}

// Process handles one chat message. A missing or unknown session id starts
// a new session under a freshly minted id, as does a channel session id.
// Only store failures and invalid requests are returned as errors; everything
// else is a conversational reply.
func (m *Machine) Process(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.ChatResponse{}, err
	}

	if strings.HasPrefix(req.SessionID, ChannelKeyPrefix) {
		slog.Warn("Machine.Process: channel session id rejected", "requestedID", req.SessionID)
	} else if req.SessionID != "" {
		resp, found, err := m.turn(ctx, req.SessionID, req.Message, req.Language, false, false)
		if err != nil || found {
			return resp, err
		}
		slog.Debug("Machine.Process: unknown session, starting a new one", "requestedID", req.SessionID)
	}

	resp, _, err := m.turn(ctx, m.newSessionID(), req.Message, req.Language, true, false)
	return resp, err
}

// ProcessChannel handles a message from a channel with its own stable
// conversation key, such as an SMS sender. The session is stored under
// ChannelSessionID(key) and created when missing. Bare numbers select from
// the options last offered.
func (m *Machine) ProcessChannel(ctx context.Context, key, message, lang string) (models.ChatResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.ChatResponse{}, models.ErrEmptyChannelKey
	}
	req := models.ChatRequest{SessionID: ChannelSessionID(key), Message: message, Language: lang}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.ChatResponse{}, err
	}
	resp, _, err := m.turn(ctx, req.SessionID, req.Message, req.Language, true, true)
	return resp, err
}

// turn runs one message against session id under its lock. found is false
// when the session does not exist and create is false.
func (m *Machine) turn(ctx context.Context, id, message, lang string, create, numbered bool) (models.ChatResponse, bool, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return models.ChatResponse{}, false, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		if !create {
			return models.ChatResponse{}, false, nil
		}
		if sess, err = m.store.Create(ctx, id); err != nil {
			return models.ChatResponse{}, false, fmt.Errorf("failed to create session: %w", err)
		}
		slog.Debug("Machine.turn: session created", "sessionID", id)
	}

	resp := m.step(ctx, sess, message, lang, numbered)

	if err := m.store.Save(ctx, sess); err != nil {
		return models.ChatResponse{}, true, fmt.Errorf("failed to save session: %w", err)
	}
	return resp, true, nil
}

// step applies one message to sess in place and builds the localized response.
func (m *Machine) step(ctx context.Context, sess *models.Session, message, lang string, numbered bool) models.ChatResponse {
	now := m.now()
	raw := strings.TrimSpace(message)
	if numbered {
		raw = resolveChoice(sess, raw)
	}
	t := &turn{sess: sess, raw: raw, token: m.table.NormalizeInput(raw), lang: lang}

	from := sess.State
	if !from.IsValid() {
		slog.Warn("Machine.step: unknown stored state, restarting", "sessionID", sess.ID, "state", from)
		sess.State = models.StateStart
	}
	if m.resetKeywords[strings.ToLower(t.token)] {
		slog.Debug("Machine.step: reset keyword", "sessionID", sess.ID, "from", from)
		sess.Profile.Reset()
		sess.State = models.StateStart
		metrics.ConversationResets.Inc()
	}
	metrics.ChatTurns.WithLabelValues(string(sess.State)).Inc()

	out := m.transition(ctx, t)

	if sess.State != from {
		metrics.StateTransitions.WithLabelValues(string(from), string(sess.State)).Inc()
	}
	slog.Debug("Machine.step: turn processed", "sessionID", sess.ID, "from", from, "to", sess.State, "mode", out.mode)

	sess.Language = lang
	sess.AppendTurn(models.TurnRoleUser, raw, from, now)
	sess.AppendTurn(models.TurnRoleBot, out.reply, sess.State, now)
	sess.UpdatedAt = now

	return models.ChatResponse{
		SessionID:       sess.ID,
		Reply:           out.reply,
		State:           sess.State,
		Options:         m.table.TranslateOptions(out.options, lang),
		InputMode:       out.mode,
		Recommendations: out.recs,
	}
}

