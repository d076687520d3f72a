// Package models defines session structures for FARMA conversations.
package models

import "time"

// MaxHistoryTurns caps the diagnostic message history kept per session.
const MaxHistoryTurns = 50

// Turn roles.
const (
	TurnRoleUser = "user"
	TurnRoleBot  = "bot"
)

// FarmerProfile is the set of farm attributes accumulated across turns.
// Empty strings and nil pointers mean "not collected yet".
type FarmerProfile struct {
	District      string   `json:"district,omitempty"`
	State         string   `json:"state,omitempty"`
	SoilType      string   `json:"soilType,omitempty"`
	Season        string   `json:"season,omitempty"`
	LandArea      *float64 `json:"landArea,omitempty"`
	HasIrrigation *bool    `json:"hasIrrigation,omitempty"`
}

// Reset replaces the profile with an empty one.
func (p *FarmerProfile) Reset() {
	*p = FarmerProfile{}
}

// IsEmpty reports whether no attribute has been collected.
func (p FarmerProfile) IsEmpty() bool {
	return p.District == "" && p.State == "" && p.SoilType == "" && p.Season == "" &&
		p.LandArea == nil && p.HasIrrigation == nil
}

// Clone returns a deep copy so callers cannot alias the pointer fields.
func (p FarmerProfile) Clone() FarmerProfile {
	out := p
	if p.LandArea != nil {
		v := *p.LandArea
		out.LandArea = &v
	}
	if p.HasIrrigation != nil {
		v := *p.HasIrrigation
		out.HasIrrigation = &v
	}
	return out
}

// Turn is one entry of a session's message history.
type Turn struct {
	Role  string    `json:"role"`
	Text  string    `json:"text"`
	State StateType `json:"state"`
	At    time.Time `json:"at"`
}

// Session represents one conversation with a farmer.
type Session struct {
	ID        string        `json:"session_id"`
	State     StateType     `json:"state"`
	Language  string        `json:"language"`
	Profile   FarmerProfile `json:"profile"`
	History   []Turn        `json:"history,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewSession creates a session in the START state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateStart,
		Language:  DefaultLanguage,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTurn records a message, dropping the oldest entries past MaxHistoryTurns.
func (s *Session) AppendTurn(role, text string, state StateType, at time.Time) {
	s.History = append(s.History, Turn{Role: role, Text: text, State: state, At: at})
	if over := len(s.History) - MaxHistoryTurns; over > 0 {
		s.History = append([]Turn(nil), s.History[over:]...)
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Profile = s.Profile.Clone()
	if s.History != nil {
		out.History = append([]Turn(nil), s.History...)
	}
	return &out
}
