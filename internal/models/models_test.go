package models

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRequest_Normalize(t *testing.T) {
	req := ChatRequest{SessionID: "  abc  ", Message: " hi ", Language: " HI "}
	req.Normalize()
	assert.Equal(t, "abc", req.SessionID)
	assert.Equal(t, " hi ", req.Message, "message whitespace is left to the state machine")
	assert.Equal(t, LanguageHindi, req.Language)

	req = ChatRequest{}
	req.Normalize()
	assert.Equal(t, DefaultLanguage, req.Language)
}

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  ChatRequest
		want error
	}{
		{"ok", ChatRequest{Message: "hi", Language: "te"}, nil},
		{"empty language allowed", ChatRequest{Message: "hi"}, nil},
		{"unsupported language", ChatRequest{Message: "hi", Language: "fr"}, ErrInvalidLanguage},
		{"message too long", ChatRequest{Message: strings.Repeat("x", MaxMessageLength+1)}, ErrMessageTooLong},
		{"telugu message at limit", ChatRequest{Message: strings.Repeat("తె", MaxMessageLength/2), Language: "te"}, nil},
		{"hindi message over limit", ChatRequest{Message: strings.Repeat("क", MaxMessageLength+1), Language: "hi"}, ErrMessageTooLong},
		{"session id too long", ChatRequest{SessionID: strings.Repeat("s", MaxSessionIDLength+1)}, ErrSessionIDTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStateType_IsValid(t *testing.T) {
	for _, s := range AllStates {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, StateType("ASK_CROP").IsValid())
	assert.False(t, StateType("").IsValid())
}

func TestFarmerProfile_CloneAndReset(t *testing.T) {
	area := 2.5
	irrigated := true
	p := FarmerProfile{District: "Guntur", LandArea: &area, HasIrrigation: &irrigated}
	assert.False(t, p.IsEmpty())

	c := p.Clone()
	*c.LandArea = 9
	*c.HasIrrigation = false
	assert.Equal(t, 2.5, *p.LandArea)
	assert.True(t, *p.HasIrrigation)

	p.Reset()
	assert.True(t, p.IsEmpty())
}

func TestSession_AppendTurnCapsHistory(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("id", now)
	assert.Equal(t, StateStart, s.State)
	assert.Equal(t, DefaultLanguage, s.Language)

	for i := 0; i < MaxHistoryTurns+10; i++ {
		s.AppendTurn(TurnRoleUser, fmt.Sprint(i), StateStart, now)
	}
	require.Len(t, s.History, MaxHistoryTurns)
	assert.Equal(t, "10", s.History[0].Text)
	assert.Equal(t, fmt.Sprint(MaxHistoryTurns+9), s.History[MaxHistoryTurns-1].Text)
}

func TestSession_Clone(t *testing.T) {
	assert.Nil(t, (*Session)(nil).Clone())

	area := 1.0
	s := NewSession("id", time.Now())
	s.Profile.LandArea = &area
	s.AppendTurn(TurnRoleBot, "hello", StateAskLocation, time.Now())

	c := s.Clone()
	c.History[0].Text = "changed"
	*c.Profile.LandArea = 5
	assert.Equal(t, "hello", s.History[0].Text)
	assert.Equal(t, 1.0, *s.Profile.LandArea)
}

func TestAPIResponseHelpers(t *testing.T) {
	ok := Success(map[string]int{"sessions": 1})
	assert.Equal(t, "ok", ok.Status)
	assert.NotNil(t, ok.Result)

	bad := Error("boom")
	assert.Equal(t, "error", bad.Status)
	assert.Equal(t, "boom", bad.Message)
	assert.Nil(t, bad.Result)
}
