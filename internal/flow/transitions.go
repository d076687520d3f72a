package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/geo"
	"github.com/LikhithKalle/FARMA-Project/internal/i18n"
	"github.com/LikhithKalle/FARMA-Project/internal/metrics"
	"github.com/LikhithKalle/FARMA-Project/internal/models"
)

// LocationPrefix marks a message carrying device coordinates as "LOC:lat,lon".
const LocationPrefix = "LOC:"

// UnknownState is stored when a location was entered as free text.
const UnknownState = "Unknown"

var (
	locationOptions = []string{i18n.OptionUseCurrentLocation, i18n.OptionSearchManually}
	yesNoOptions    = []string{i18n.OptionYes, i18n.OptionNo}
	soilOptions     = []string{i18n.OptionRed, i18n.OptionBlack, i18n.OptionSandy, i18n.OptionLoam, i18n.OptionClay, i18n.OptionOther}
	seasonOptions   = []string{i18n.OptionKharif, i18n.OptionRabi, i18n.OptionZaid}

	areaPattern = regexp.MustCompile(`[-+]?\d*\.?\d+`)

	errMalformedCoordinates = errors.New("malformed coordinates")
)

// turn is the input of one transition.
type turn struct {
	sess  *models.Session
	raw   string // trimmed message as typed
	token string // raw normalized to a canonical option when it is a known label
	lang  string
}

// outcome is what a transition asks the caller to show next.
// options are canonical and localized by the caller.
type outcome struct {
	reply   string
	options []string
	mode    models.InputMode
	recs    []models.Recommendation
}

func (m *Machine) tr(t *turn, key string, args map[string]any) string {
	return m.table.Translate(key, t.lang, args)
}

// transition runs the handler for the session's current state.
func (m *Machine) transition(ctx context.Context, t *turn) outcome {
	switch t.sess.State {
	case models.StateStart:
		return m.onStart(t)
	case models.StateAskLocation:
		return m.onAskLocation(ctx, t)
	case models.StateSelectState:
		return m.onSelectState(t)
	case models.StateSelectDistrict:
		return m.onSelectDistrict(t)
	case models.StateConfirmLocation:
		return m.onConfirmLocation(t)
	case models.StateAskSoil:
		return m.onAskSoil(t)
	case models.StateAskSoilManual:
		return m.onAskSoilManual(t)
	case models.StateAskSeason:
		return m.onAskSeason(t)
	case models.StateAskArea:
		return m.onAskArea(t)
	case models.StateAskIrrigation:
		return m.onAskIrrigation(ctx, t)
	case models.StateComplete:
		return outcome{reply: m.tr(t, i18n.KeyResetPrompt, nil), mode: models.InputModeText}
	default:
		// step rewrites unknown states to START before dispatch.
		panic(fmt.Sprintf("flow: unhandled state %q", t.sess.State))
	}
}

func (m *Machine) onStart(t *turn) outcome {
	t.sess.State = models.StateAskLocation
	return outcome{reply: m.tr(t, i18n.KeyIntro, nil), options: locationOptions, mode: models.InputModeLocation}
}

func (m *Machine) onAskLocation(ctx context.Context, t *turn) outcome {
	p := &t.sess.Profile
	switch {
	case strings.HasPrefix(t.token, LocationPrefix):
		lat, lon, err := parseCoordinates(t.token)
		if err != nil {
			slog.Debug("Machine.onAskLocation: bad coordinates", "sessionID", t.sess.ID, "input", t.token, "error", err)
			return outcome{reply: m.tr(t, i18n.KeyLocationError, nil), mode: models.InputModeText}
		}
		loc := m.lookup.ReverseGeocode(ctx, lat, lon)
		if loc == nil {
			return outcome{reply: m.tr(t, i18n.KeyLocationFail, nil), mode: models.InputModeText}
		}
		p.District, p.State = loc.District, loc.State
		address := loc.RawPlaceName
		if address == "" {
			address = p.District + ", " + p.State
		}
		t.sess.State = models.StateConfirmLocation
		return outcome{
			reply:   m.tr(t, i18n.KeyFoundLocation, map[string]any{"address": address}),
			options: []string{i18n.OptionYes, i18n.OptionNoSearchManually},
			mode:    models.InputModeOptions,
		}

	case t.token == i18n.OptionUseCurrentLocation, t.token == "":
		return outcome{reply: m.tr(t, i18n.KeyManualLocPrompt, nil), options: locationOptions, mode: models.InputModeLocation}

	case t.token == i18n.OptionSearchManually:
		return m.askState(t)

	default:
		if place := m.lookup.SearchPlace(ctx, t.token); place != nil {
			p.District, p.State = place.Name, UnknownState
			t.sess.State = models.StateConfirmLocation
			return outcome{
				reply:   m.tr(t, i18n.KeyManualVerify, map[string]any{"place": place.Name}),
				options: yesNoOptions,
				mode:    models.InputModeOptions,
			}
		}
		p.District, p.State = t.token, UnknownState
		t.sess.State = models.StateAskSoil
		return outcome{
			reply:   m.tr(t, i18n.KeyManualFail, map[string]any{"input": t.token}),
			options: soilOptions,
			mode:    models.InputModeOptions,
		}
	}
}

// askState moves to SELECT_STATE and lists every known state.
func (m *Machine) askState(t *turn) outcome {
	t.sess.State = models.StateSelectState
	return outcome{reply: m.tr(t, i18n.KeyAskState, nil), options: geo.StateNames(), mode: models.InputModeOptions}
}

func (m *Machine) onSelectState(t *turn) outcome {
	if !geo.IsKnownState(t.token) {
		return m.askState(t)
	}
	t.sess.Profile.State = t.token
	t.sess.State = models.StateSelectDistrict
	return outcome{reply: m.tr(t, i18n.KeyAskDistrict, nil), options: geo.Districts(t.token), mode: models.InputModeOptions}
}

func (m *Machine) onSelectDistrict(t *turn) outcome {
	t.sess.Profile.District = t.token
	return m.askSoil(t)
}

// askSoil moves to ASK_SOIL and lists the soil types.
func (m *Machine) askSoil(t *turn) outcome {
	t.sess.State = models.StateAskSoil
	return outcome{reply: m.tr(t, i18n.KeyAskSoil, nil), options: soilOptions, mode: models.InputModeOptions}
}

func (m *Machine) onConfirmLocation(t *turn) outcome {
	if strings.EqualFold(t.raw, "yes") || t.token == i18n.OptionYes {
		return m.askSoil(t)
	}
	return m.askState(t)
}

func (m *Machine) onAskSoil(t *turn) outcome {
	if t.token == i18n.OptionOther {
		t.sess.State = models.StateAskSoilManual
		return outcome{reply: m.tr(t, i18n.KeyAskSoilManual, nil), mode: models.InputModeText}
	}
	t.sess.Profile.SoilType = t.token
	return m.askSeason(t)
}

func (m *Machine) onAskSoilManual(t *turn) outcome {
	t.sess.Profile.SoilType = t.raw
	return m.askSeason(t)
}

// askSeason moves to ASK_SEASON and lists the seasons.
func (m *Machine) askSeason(t *turn) outcome {
	t.sess.State = models.StateAskSeason
	return outcome{reply: m.tr(t, i18n.KeyAskSeason, nil), options: seasonOptions, mode: models.InputModeOptions}
}

func (m *Machine) onAskSeason(t *turn) outcome {
	t.sess.Profile.Season = t.token
	t.sess.State = models.StateAskArea
	return outcome{reply: m.tr(t, i18n.KeyAskArea, nil), mode: models.InputModeText}
}

func (m *Machine) onAskArea(t *turn) outcome {
	match := areaPattern.FindString(t.raw)
	if match == "" {
		return outcome{reply: m.tr(t, i18n.KeyAreaInvalid, nil), mode: models.InputModeText}
	}
	area, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return outcome{reply: m.tr(t, i18n.KeyAreaInvalid, nil), mode: models.InputModeText}
	}
	if area <= 0 {
		return outcome{reply: m.tr(t, i18n.KeyAreaError, nil), mode: models.InputModeText}
	}
	t.sess.Profile.LandArea = &area
	t.sess.State = models.StateAskIrrigation
	return outcome{reply: m.tr(t, i18n.KeyAskIrrigation, nil), options: yesNoOptions, mode: models.InputModeOptions}
}

func (m *Machine) onAskIrrigation(ctx context.Context, t *turn) outcome {
	irrigated := t.token == i18n.OptionYes
	t.sess.Profile.HasIrrigation = &irrigated
	t.sess.State = models.StateComplete

	out := outcome{reply: m.tr(t, i18n.KeyAnalyzing, nil), mode: models.InputModeNone}
	recs, err := m.recommend(ctx, t.sess.Profile)
	switch {
	case err != nil:
		slog.Error("Machine.onAskIrrigation: recommendation failed", "sessionID", t.sess.ID, "error", err)
		metrics.Recommendations.WithLabelValues(metrics.OutcomeError).Inc()
		out.reply = m.tr(t, i18n.KeyErrorRecs, nil)
	case len(recs) == 0:
		metrics.Recommendations.WithLabelValues(metrics.OutcomeEmpty).Inc()
		out.reply = m.tr(t, i18n.KeyNoCrops, nil)
		out.recs = []models.Recommendation{}
	default:
		metrics.Recommendations.WithLabelValues(metrics.OutcomeFound).Inc()
		out.reply = m.tr(t, i18n.KeyFoundCrops, map[string]any{"count": len(recs)})
		out.recs = recs
	}
	return out
}

// recommend calls the engine, converting a panic into an error.
func (m *Machine) recommend(ctx context.Context, profile models.FarmerProfile) (recs []models.Recommendation, err error) {
	if m.engine == nil {
		return nil, nil
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			recs, err = nil, fmt.Errorf("recommendation engine panicked: %v", r)
		}
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()
	return m.engine.Recommend(ctx, profile.Clone())
}

// parseCoordinates reads "LOC:lat,lon". Extra comma-separated fields are ignored.
func parseCoordinates(token string) (float64, float64, error) {
	parts := strings.Split(strings.TrimPrefix(token, LocationPrefix), ",")
	if len(parts) < 2 {
		return 0, 0, errMalformedCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude: %w", err)
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return 0, 0, errMalformedCoordinates
	}
	return lat, lon, nil
}

// optionsFor returns the canonical options offered while in the session's state.
func optionsFor(sess *models.Session) []string {
	switch sess.State {
	case models.StateAskLocation:
		return locationOptions
	case models.StateSelectState:
		return geo.StateNames()
	case models.StateSelectDistrict:
		return geo.Districts(sess.Profile.State)
	case models.StateConfirmLocation, models.StateAskIrrigation:
		return yesNoOptions
	case models.StateAskSoil:
		return soilOptions
	case models.StateAskSeason:
		return seasonOptions
	default:
		return nil
	}
}

// resolveChoice maps a bare option number to the canonical option it
// selects. Anything else is returned unchanged.
func resolveChoice(sess *models.Session, raw string) string {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return raw
	}
	options := optionsFor(sess)
	if n > len(options) {
		return raw
	}
	return options[n-1]
}
