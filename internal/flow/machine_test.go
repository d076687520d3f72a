package flow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/geo"
	"github.com/LikhithKalle/FARMA-Project/internal/i18n"
	"github.com/LikhithKalle/FARMA-Project/internal/models"
	"github.com/LikhithKalle/FARMA-Project/internal/recommend"
	"github.com/LikhithKalle/FARMA-Project/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	location *geo.Location
	place    *geo.PlaceMatch

	mu          sync.Mutex
	searched    []string
	reverseHits int
}

func (f *fakeLookup) ReverseGeocode(ctx context.Context, lat, lon float64) *geo.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reverseHits++
	return f.location
}

func (f *fakeLookup) SearchPlace(ctx context.Context, query string) *geo.PlaceMatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, query)
	return f.place
}

type fakeEngine struct {
	recs   []models.Recommendation
	err    error
	panics bool

	mu      sync.Mutex
	profile *models.FarmerProfile
}

func (f *fakeEngine) Recommend(ctx context.Context, profile models.FarmerProfile) ([]models.Recommendation, error) {
	f.mu.Lock()
	f.profile = &profile
	f.mu.Unlock()
	if f.panics {
		panic("classifier blew up")
	}
	return f.recs, f.err
}

type failingStore struct{ *store.InMemoryStore }

func (failingStore) Save(context.Context, *models.Session) error {
	return errors.New("database is locked")
}

var table = i18n.New()

func en(key string, args map[string]any) string {
	return table.Translate(key, models.LanguageEnglish, args)
}

func newMachine(t *testing.T, lookup geo.Lookup, engine recommend.Recommender) (*Machine, *store.InMemoryStore) {
	t.Helper()
	st := store.NewInMemoryStore()
	return NewMachine(st, table, lookup, engine), st
}

// seed stores a session in the given state and returns its id.
func seed(t *testing.T, st store.SessionStore, state models.StateType, profile models.FarmerProfile) string {
	t.Helper()
	ctx := context.Background()
	sess, err := st.Create(ctx, fmt.Sprintf("seed-%s-%d", state, time.Now().UnixNano()))
	require.NoError(t, err)
	sess.State = state
	sess.Profile = profile
	require.NoError(t, st.Save(ctx, sess))
	return sess.ID
}

func send(t *testing.T, m *Machine, id, msg string) models.ChatResponse {
	t.Helper()
	resp, err := m.Process(context.Background(), models.ChatRequest{SessionID: id, Message: msg})
	require.NoError(t, err)
	return resp
}

func loadSession(t *testing.T, st store.SessionStore, id string) *models.Session {
	t.Helper()
	sess, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, sess)
	return sess
}

func TestProcess_NewSessionStartsConversation(t *testing.T) {
	m, st := newMachine(t, nil, nil)

	resp := send(t, m, "", "anything")
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, models.StateAskLocation, resp.State)
	assert.Equal(t, en(i18n.KeyIntro, nil), resp.Reply)
	assert.Equal(t, []string{"Use Current Location", "Search Manually"}, resp.Options)
	assert.Equal(t, models.InputModeLocation, resp.InputMode)
	assert.Nil(t, resp.Recommendations)

	sess := loadSession(t, st, resp.SessionID)
	require.Len(t, sess.History, 2)
	assert.Equal(t, models.TurnRoleUser, sess.History[0].Role)
	assert.Equal(t, "anything", sess.History[0].Text)
	assert.Equal(t, models.StateStart, sess.History[0].State)
	assert.Equal(t, models.TurnRoleBot, sess.History[1].Role)
	assert.Equal(t, models.StateAskLocation, sess.History[1].State)
}

func TestProcess_UnknownSessionIDStartsNewSession(t *testing.T) {
	ids := []string{"generated-1", "generated-2"}
	st := store.NewInMemoryStore()
	m := NewMachine(st, table, nil, nil, WithSessionIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	resp := send(t, m, "client-made-up", "hello")
	assert.Equal(t, "generated-1", resp.SessionID)
	assert.Equal(t, models.StateAskLocation, resp.State)

	resp = send(t, m, "generated-1", "Search Manually")
	assert.Equal(t, "generated-1", resp.SessionID)
	assert.Equal(t, models.StateSelectState, resp.State)
}

func TestProcess_EndToEndManualPath(t *testing.T) {
	artifacts, err := recommend.LoadArtifacts(filepath.Join("..", "..", "models"))
	require.NoError(t, err)
	m, st := newMachine(t, nil, recommend.NewEngine(artifacts))

	steps := []struct {
		msg  string
		want models.StateType
	}{
		{"hi", models.StateAskLocation},
		{"Search Manually", models.StateSelectState},
		{"Andhra Pradesh", models.StateSelectDistrict},
		{"Guntur", models.StateAskSoil},
		{"Red", models.StateAskSeason},
		{"Kharif", models.StateAskArea},
		{"5", models.StateAskIrrigation},
		{"Yes", models.StateComplete},
	}

	var resp models.ChatResponse
	id := ""
	for _, s := range steps {
		resp = send(t, m, id, s.msg)
		id = resp.SessionID
		require.Equal(t, s.want, resp.State, "after %q", s.msg)
	}

	assert.Equal(t, en(i18n.KeyFoundCrops, map[string]any{"count": 1}), resp.Reply)
	assert.Equal(t, models.InputModeNone, resp.InputMode)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Millets", resp.Recommendations[0].CropName)

	sess := loadSession(t, st, id)
	assert.Equal(t, "Andhra Pradesh", sess.Profile.State)
	assert.Equal(t, "Guntur", sess.Profile.District)
	assert.Equal(t, "Red", sess.Profile.SoilType)
	assert.Equal(t, "Kharif", sess.Profile.Season)
	require.NotNil(t, sess.Profile.LandArea)
	assert.Equal(t, 5.0, *sess.Profile.LandArea)
	require.NotNil(t, sess.Profile.HasIrrigation)
	assert.True(t, *sess.Profile.HasIrrigation)

	resp = send(t, m, id, "what now?")
	assert.Equal(t, models.StateComplete, resp.State)
	assert.Equal(t, en(i18n.KeyResetPrompt, nil), resp.Reply)
	assert.Equal(t, models.InputModeText, resp.InputMode)
}

func TestProcess_LocalizedPathStoresCanonicalTokens(t *testing.T) {
	engine := &fakeEngine{recs: []models.Recommendation{{CropName: "Millets"}}}
	m, st := newMachine(t, nil, engine)
	hi := func(opt string) string { return table.TranslateOptions([]string{opt}, models.LanguageHindi)[0] }
	say := func(id, msg string) models.ChatResponse {
		resp, err := m.Process(context.Background(), models.ChatRequest{SessionID: id, Message: msg, Language: "HI"})
		require.NoError(t, err)
		return resp
	}

	resp := say("", "नमस्ते")
	id := resp.SessionID
	assert.Equal(t, table.Translate(i18n.KeyIntro, models.LanguageHindi, nil), resp.Reply)
	assert.Equal(t, []string{hi(i18n.OptionUseCurrentLocation), hi(i18n.OptionSearchManually)}, resp.Options)

	resp = say(id, hi(i18n.OptionSearchManually))
	require.Equal(t, models.StateSelectState, resp.State)
	assert.Contains(t, resp.Options, "Telangana", "state names are not translated")

	say(id, "Telangana")
	resp = say(id, "Warangal")
	require.Equal(t, models.StateAskSoil, resp.State)
	assert.Contains(t, resp.Options, hi(i18n.OptionBlack))

	say(id, hi(i18n.OptionBlack))
	say(id, hi(i18n.OptionRabi))
	say(id, "3 एकड़")
	resp = say(id, hi(i18n.OptionNo))
	require.Equal(t, models.StateComplete, resp.State)
	assert.Equal(t, table.Translate(i18n.KeyFoundCrops, models.LanguageHindi, map[string]any{"count": 1}), resp.Reply)

	require.NotNil(t, engine.profile)
	assert.Equal(t, "Black", engine.profile.SoilType)
	assert.Equal(t, "Rabi", engine.profile.Season)
	require.NotNil(t, engine.profile.HasIrrigation)
	assert.False(t, *engine.profile.HasIrrigation)

	sess := loadSession(t, st, id)
	assert.Equal(t, models.LanguageHindi, sess.Language)
	assert.Equal(t, "Black", sess.Profile.SoilType)
}

func TestProcess_ResetFromEveryState(t *testing.T) {
	area := 3.0
	irrigated := true
	full := models.FarmerProfile{
		District: "Guntur", State: "Andhra Pradesh", SoilType: "Red", Season: "Kharif",
		LandArea: &area, HasIrrigation: &irrigated,
	}

	for _, state := range models.AllStates {
		for _, keyword := range []string{"reset", "Start Over", " RESTART ", "Hi", "hello"} {
			t.Run(fmt.Sprintf("%s/%s", state, strings.TrimSpace(keyword)), func(t *testing.T) {
				m, st := newMachine(t, nil, &fakeEngine{})
				id := seed(t, st, state, full.Clone())

				resp := send(t, m, id, keyword)
				assert.Equal(t, models.StateAskLocation, resp.State)
				assert.Equal(t, en(i18n.KeyIntro, nil), resp.Reply)

				sess := loadSession(t, st, id)
				assert.True(t, sess.Profile.IsEmpty())
				assert.Equal(t, models.StateAskLocation, sess.State)
			})
		}
	}
}

func TestProcess_UnknownStoredStateRestarts(t *testing.T) {
	m, st := newMachine(t, nil, nil)
	id := seed(t, st, models.StateType("LEGACY_STATE"), models.FarmerProfile{})

	resp := send(t, m, id, "whatever")
	assert.Equal(t, models.StateAskLocation, resp.State)
	assert.Equal(t, en(i18n.KeyIntro, nil), resp.Reply)
}

func TestProcess_AskLocation(t *testing.T) {
	tests := []struct {
		name         string
		lookup       *fakeLookup
		msg          string
		wantState    models.StateType
		wantReply    string
		wantOptions  []string
		wantMode     models.InputMode
		wantDistrict string
		wantRegion   string
	}{
		{
			name: "coordinates resolved",
			lookup: &fakeLookup{location: &geo.Location{
				District: "Hyderabad", State: "Telangana", RawPlaceName: "Hyderabad, Telangana, India",
			}},
			msg:          "LOC:17.385,78.4867",
			wantState:    models.StateConfirmLocation,
			wantReply:    en(i18n.KeyFoundLocation, map[string]any{"address": "Hyderabad, Telangana, India"}),
			wantOptions:  []string{"Yes", "No, Search Manually"},
			wantMode:     models.InputModeOptions,
			wantDistrict: "Hyderabad",
			wantRegion:   "Telangana",
		},
		{
			name:         "coordinates resolved without a place name",
			lookup:       &fakeLookup{location: &geo.Location{District: "Guntur", State: "Andhra Pradesh"}},
			msg:          "LOC: 16.3, 80.4",
			wantState:    models.StateConfirmLocation,
			wantReply:    en(i18n.KeyFoundLocation, map[string]any{"address": "Guntur, Andhra Pradesh"}),
			wantOptions:  []string{"Yes", "No, Search Manually"},
			wantMode:     models.InputModeOptions,
			wantDistrict: "Guntur",
			wantRegion:   "Andhra Pradesh",
		},
		{
			name:        "coordinates not found",
			lookup:      &fakeLookup{},
			msg:         "LOC:0,0",
			wantState:   models.StateAskLocation,
			wantReply:   en(i18n.KeyLocationFail, nil),
			wantOptions: []string{},
			wantMode:    models.InputModeText,
		},
		{
			name:        "malformed coordinates",
			lookup:      &fakeLookup{},
			msg:         "LOC:abc",
			wantState:   models.StateAskLocation,
			wantReply:   en(i18n.KeyLocationError, nil),
			wantOptions: []string{},
			wantMode:    models.InputModeText,
		},
		{
			name:        "out of range coordinates",
			lookup:      &fakeLookup{},
			msg:         "LOC:95,200",
			wantState:   models.StateAskLocation,
			wantReply:   en(i18n.KeyLocationError, nil),
			wantOptions: []string{},
			wantMode:    models.InputModeText,
		},
		{
			name:        "use current location reminder",
			lookup:      &fakeLookup{},
			msg:         "Use Current Location",
			wantState:   models.StateAskLocation,
			wantReply:   en(i18n.KeyManualLocPrompt, nil),
			wantOptions: []string{"Use Current Location", "Search Manually"},
			wantMode:    models.InputModeLocation,
		},
		{
			name:         "free text found",
			lookup:       &fakeLookup{place: &geo.PlaceMatch{Name: "Warangal"}},
			msg:          "warangal town",
			wantState:    models.StateConfirmLocation,
			wantReply:    en(i18n.KeyManualVerify, map[string]any{"place": "Warangal"}),
			wantOptions:  []string{"Yes", "No"},
			wantMode:     models.InputModeOptions,
			wantDistrict: "Warangal",
			wantRegion:   UnknownState,
		},
		{
			name:         "free text not found",
			lookup:       &fakeLookup{},
			msg:          "Some Village",
			wantState:    models.StateAskSoil,
			wantReply:    en(i18n.KeyManualFail, map[string]any{"input": "Some Village"}),
			wantOptions:  []string{"Red", "Black", "Sandy", "Loam", "Clay", "Other"},
			wantMode:     models.InputModeOptions,
			wantDistrict: "Some Village",
			wantRegion:   UnknownState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, st := newMachine(t, tt.lookup, nil)
			id := seed(t, st, models.StateAskLocation, models.FarmerProfile{})

			resp := send(t, m, id, tt.msg)
			assert.Equal(t, tt.wantState, resp.State)
			assert.Equal(t, tt.wantReply, resp.Reply)
			assert.Equal(t, tt.wantOptions, resp.Options)
			assert.Equal(t, tt.wantMode, resp.InputMode)

			sess := loadSession(t, st, id)
			assert.Equal(t, tt.wantDistrict, sess.Profile.District)
			assert.Equal(t, tt.wantRegion, sess.Profile.State)
		})
	}
}

func TestProcess_MalformedCoordinatesSkipLookup(t *testing.T) {
	lookup := &fakeLookup{}
	m, st := newMachine(t, lookup, nil)
	id := seed(t, st, models.StateAskLocation, models.FarmerProfile{})

	send(t, m, id, "LOC:17.3")
	assert.Zero(t, lookup.reverseHits)
	assert.Empty(t, lookup.searched)
}

func TestProcess_SearchManuallyListsStates(t *testing.T) {
	m, st := newMachine(t, nil, nil)
	id := seed(t, st, models.StateAskLocation, models.FarmerProfile{})

	resp := send(t, m, id, "Search Manually")
	assert.Equal(t, models.StateSelectState, resp.State)
	assert.Equal(t, en(i18n.KeyAskState, nil), resp.Reply)
	assert.Equal(t, geo.StateNames(), resp.Options)
}

func TestProcess_SelectState(t *testing.T) {
	m, st := newMachine(t, nil, nil)
	id := seed(t, st, models.StateSelectState, models.FarmerProfile{})

	resp := send(t, m, id, "Atlantis")
	assert.Equal(t, models.StateSelectState, resp.State)
	assert.Equal(t, geo.StateNames(), resp.Options)

	resp = send(t, m, id, "andhra pradesh")
	assert.Equal(t, models.StateSelectState, resp.State, "state names match exactly")

	resp = send(t, m, id, "Andhra Pradesh")
	assert.Equal(t, models.StateSelectDistrict, resp.State)
	assert.Equal(t, en(i18n.KeyAskDistrict, nil), resp.Reply)
	assert.Equal(t, geo.Districts("Andhra Pradesh"), resp.Options)
}

func TestProcess_ConfirmLocation(t *testing.T) {
	tests := []struct {
		msg  string
		want models.StateType
	}{
		{"yes", models.StateAskSoil},
		{"YES", models.StateAskSoil},
		{"అవును", models.StateAskSoil},
		{"No", models.StateSelectState},
		{"No, Search Manually", models.StateSelectState},
		{"maybe", models.StateSelectState},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			m, st := newMachine(t, nil, nil)
			id := seed(t, st, models.StateConfirmLocation, models.FarmerProfile{District: "Warangal", State: UnknownState})

			resp := send(t, m, id, tt.msg)
			assert.Equal(t, tt.want, resp.State)
		})
	}
}

func TestProcess_ManualSoil(t *testing.T) {
	m, st := newMachine(t, nil, nil)
	id := seed(t, st, models.StateAskSoil, models.FarmerProfile{District: "Guntur"})

	resp := send(t, m, id, "Other")
	assert.Equal(t, models.StateAskSoilManual, resp.State)
	assert.Equal(t, en(i18n.KeyAskSoilManual, nil), resp.Reply)
	assert.Equal(t, models.InputModeText, resp.InputMode)

	resp = send(t, m, id, "  Laterite  ")
	assert.Equal(t, models.StateAskSeason, resp.State)
	assert.Equal(t, []string{"Kharif", "Rabi", "Zaid"}, resp.Options)
	assert.Equal(t, "Laterite", loadSession(t, st, id).Profile.SoilType)
}

func TestProcess_AskArea(t *testing.T) {
	tests := []struct {
		msg       string
		wantState models.StateType
		wantReply string
		wantArea  *float64
	}{
		{"-5", models.StateAskArea, en(i18n.KeyAreaError, nil), nil},
		{"0", models.StateAskArea, en(i18n.KeyAreaError, nil), nil},
		{"abc", models.StateAskArea, en(i18n.KeyAreaInvalid, nil), nil},
		{"2.5 acres", models.StateAskIrrigation, en(i18n.KeyAskIrrigation, nil), floatPtr(2.5)},
		{"about .75", models.StateAskIrrigation, en(i18n.KeyAskIrrigation, nil), floatPtr(0.75)},
		{"12 acres, maybe 14", models.StateAskIrrigation, en(i18n.KeyAskIrrigation, nil), floatPtr(12)},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			m, st := newMachine(t, nil, nil)
			id := seed(t, st, models.StateAskArea, models.FarmerProfile{SoilType: "Red", Season: "Kharif"})

			resp := send(t, m, id, tt.msg)
			assert.Equal(t, tt.wantState, resp.State)
			assert.Equal(t, tt.wantReply, resp.Reply)

			sess := loadSession(t, st, id)
			if tt.wantArea == nil {
				assert.Nil(t, sess.Profile.LandArea)
				assert.Equal(t, models.InputModeText, resp.InputMode)
				return
			}
			require.NotNil(t, sess.Profile.LandArea)
			assert.InDelta(t, *tt.wantArea, *sess.Profile.LandArea, 1e-9)
			assert.Equal(t, []string{"Yes", "No"}, resp.Options)
		})
	}
}

func TestProcess_Recommendations(t *testing.T) {
	crop := models.Recommendation{CropName: "Cotton", SuitabilityExplanation: "Good for black soil. (Match: 38%)"}
	tests := []struct {
		name      string
		engine    recommend.Recommender
		wantReply string
		wantRecs  []models.Recommendation
	}{
		{"found", &fakeEngine{recs: []models.Recommendation{crop}}, en(i18n.KeyFoundCrops, map[string]any{"count": 1}), []models.Recommendation{crop}},
		{"empty", &fakeEngine{recs: []models.Recommendation{}}, en(i18n.KeyNoCrops, nil), []models.Recommendation{}},
		{"engine error", &fakeEngine{err: errors.New("shape mismatch")}, en(i18n.KeyErrorRecs, nil), nil},
		{"engine panic", &fakeEngine{panics: true}, en(i18n.KeyErrorRecs, nil), nil},
		{"no engine", nil, en(i18n.KeyNoCrops, nil), []models.Recommendation{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, st := newMachine(t, nil, tt.engine)
			area := 4.0
			id := seed(t, st, models.StateAskIrrigation, models.FarmerProfile{SoilType: "Black", Season: "Kharif", LandArea: &area})

			resp := send(t, m, id, "Yes")
			assert.Equal(t, models.StateComplete, resp.State)
			assert.Equal(t, tt.wantReply, resp.Reply)
			assert.Equal(t, tt.wantRecs, resp.Recommendations)
			assert.Equal(t, models.InputModeNone, resp.InputMode)
			assert.Empty(t, resp.Options)
		})
	}
}

func TestProcess_IrrigationAnswerIsStrict(t *testing.T) {
	engine := &fakeEngine{}
	m, st := newMachine(t, nil, engine)
	id := seed(t, st, models.StateAskIrrigation, models.FarmerProfile{SoilType: "Red"})

	send(t, m, id, "yeah")
	require.NotNil(t, engine.profile)
	require.NotNil(t, engine.profile.HasIrrigation)
	assert.False(t, *engine.profile.HasIrrigation)
}

func TestProcess_InvalidRequests(t *testing.T) {
	m, _ := newMachine(t, nil, nil)

	_, err := m.Process(context.Background(), models.ChatRequest{Message: strings.Repeat("a", models.MaxMessageLength+1)})
	assert.ErrorIs(t, err, models.ErrMessageTooLong)

	_, err = m.Process(context.Background(), models.ChatRequest{Message: "hi", Language: "fr"})
	assert.ErrorIs(t, err, models.ErrInvalidLanguage)
}

func TestProcess_StoreFailureIsReturned(t *testing.T) {
	m := NewMachine(failingStore{store.NewInMemoryStore()}, table, nil, nil)

	_, err := m.Process(context.Background(), models.ChatRequest{Message: "hi"})
	assert.Error(t, err)
}

func TestProcessChannel_NumberedChoices(t *testing.T) {
	m, st := newMachine(t, &fakeLookup{}, nil)
	key := "sms:+911234567890"
	ctx := context.Background()

	resp, err := m.ProcessChannel(ctx, key, "hello", "en")
	require.NoError(t, err)
	assert.Equal(t, ChannelSessionID(key), resp.SessionID)
	assert.Equal(t, models.StateAskLocation, resp.State)

	resp, err = m.ProcessChannel(ctx, key, "2", "en")
	require.NoError(t, err)
	assert.Equal(t, models.StateSelectState, resp.State)

	resp, err = m.ProcessChannel(ctx, key, "1", "en")
	require.NoError(t, err)
	assert.Equal(t, models.StateSelectDistrict, resp.State)
	assert.Equal(t, geo.StateNames()[0], loadSession(t, st, ChannelSessionID(key)).Profile.State)

	resp, err = m.ProcessChannel(ctx, key, "99", "en")
	require.NoError(t, err)
	assert.Equal(t, models.StateAskSoil, resp.State)
	assert.Equal(t, "99", loadSession(t, st, ChannelSessionID(key)).Profile.District, "out of range numbers are taken literally")

	_, err = m.ProcessChannel(ctx, key, "2", "en")
	require.NoError(t, err)
	_, err = m.ProcessChannel(ctx, key, "3", "en")
	require.NoError(t, err)
	resp, err = m.ProcessChannel(ctx, key, "2", "en")
	require.NoError(t, err)
	assert.Equal(t, models.StateAskIrrigation, resp.State)

	sess := loadSession(t, st, ChannelSessionID(key))
	assert.Equal(t, "Black", sess.Profile.SoilType)
	assert.Equal(t, "Zaid", sess.Profile.Season)
	require.NotNil(t, sess.Profile.LandArea)
	assert.Equal(t, 2.0, *sess.Profile.LandArea, "numbers are areas while asking for area")
}

func TestProcessChannel_RequiresKey(t *testing.T) {
	m, _ := newMachine(t, nil, nil)
	_, err := m.ProcessChannel(context.Background(), "  ", "hi", "en")
	assert.ErrorIs(t, err, models.ErrEmptyChannelKey)
}

func TestProcess_CannotResumeChannelSession(t *testing.T) {
	m, st := newMachine(t, &fakeLookup{}, nil)
	key := "sms:+15551234567"
	ctx := context.Background()

	for _, msg := range []string{"hello", "2", "1"} {
		_, err := m.ProcessChannel(ctx, key, msg, "en")
		require.NoError(t, err)
	}
	channelID := ChannelSessionID(key)
	before := loadSession(t, st, channelID)
	require.Equal(t, models.StateSelectDistrict, before.State)

	for _, id := range []string{key, channelID} {
		resp := send(t, m, id, "reset")
		assert.NotEqual(t, key, resp.SessionID)
		assert.NotEqual(t, channelID, resp.SessionID)
		assert.Equal(t, models.StateAskLocation, resp.State)
	}

	after := loadSession(t, st, channelID)
	assert.Equal(t, models.StateSelectDistrict, after.State)
	assert.Equal(t, before.Profile, after.Profile)
	assert.Len(t, after.History, len(before.History))
}

func TestProcess_ConcurrentMessagesForOneSessionAreSerialized(t *testing.T) {
	m, st := newMachine(t, nil, nil)
	key := "sms:+15550001"
	const senders = 20

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ProcessChannel(context.Background(), key, "hello", "en")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess := loadSession(t, st, ChannelSessionID(key))
	assert.Len(t, sess.History, 2*senders, "no turn may be lost")
	assert.Equal(t, models.StateAskLocation, sess.State)
}

func TestProcess_ConcurrentSessions(t *testing.T) {
	m, st := newMachine(t, nil, &fakeEngine{recs: []models.Recommendation{{CropName: "Maize"}}})
	script := []string{"hi", "Search Manually", "Punjab", "Ludhiana", "Loam", "Rabi", "3", "No"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("sms:+1555000%02d", i)
			for _, msg := range script {
				_, err := m.ProcessChannel(context.Background(), key, msg, "en")
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, models.StateComplete, loadSession(t, st, ChannelSessionID("sms:+155500007")).State)
}

func TestFormatText(t *testing.T) {
	resp := models.ChatResponse{Reply: "Pick one:", Options: []string{"Yes", "No"}}
	assert.Equal(t, "Pick one:\n1. Yes\n2. No", FormatText(resp))

	resp = models.ChatResponse{
		Reply:           "Found 1 crop.",
		Recommendations: []models.Recommendation{{CropName: "Cotton", SuitabilityExplanation: "Good for black soil. (Match: 38%)"}},
	}
	assert.Equal(t, "Found 1 crop.\n1. Cotton: Good for black soil. (Match: 38%)", FormatText(resp))
}

func floatPtr(f float64) *float64 { return &f }
