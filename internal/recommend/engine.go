// Package recommend scores crops for a completed farmer profile.
//
// A trained classifier ranks crops from the soil type alone; deterministic
// business rules then drop or penalize candidates by season, irrigation and
// land area. Model artifacts are loaded once and shared read-only.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
)

// Engine defaults
const (
	// DefaultMaxResults is the number of crops returned unless configured.
	DefaultMaxResults = 1
	// CandidatePoolSize is how many top-ranked crops are considered.
	CandidatePoolSize = 5
	// MinProbability is the exclusive lower bound for a candidate to be considered.
	MinProbability = 0.05
)

// Recommender produces crop recommendations for a profile.
type Recommender interface {
	Recommend(ctx context.Context, profile models.FarmerProfile) ([]models.Recommendation, error)
}

// Opts holds configuration options for the Engine.
type Opts struct {
	MaxResults int
}

// Option defines a configuration option for the Engine.
type Option func(*Opts)

// WithMaxResults sets how many accepted candidates are returned.
// Values below 1 are ignored.
func WithMaxResults(n int) Option {
	return func(o *Opts) {
		if n >= 1 {
			o.MaxResults = n
		}
	}
}

// Engine implements Recommender on top of the trained artifacts.
type Engine struct {
	artifacts  *Artifacts
	maxResults int
}

// NewEngine creates an Engine. A nil or incomplete artifacts bundle is
// allowed: the engine then always returns an empty list.
func NewEngine(artifacts *Artifacts, opts ...Option) *Engine {
	cfg := Opts{MaxResults: DefaultMaxResults}
	for _, opt := range opts {
		opt(&cfg)
	}
	if artifacts != nil && (artifacts.Model == nil || artifacts.SoilEncoder == nil || artifacts.CropEncoder == nil) {
		slog.Warn("recommend.NewEngine: incomplete artifacts, engine disabled")
		artifacts = nil
	}
	slog.Debug("recommend.NewEngine: engine created", "modelLoaded", artifacts != nil, "maxResults", cfg.MaxResults)
	return &Engine{artifacts: artifacts, maxResults: cfg.MaxResults}
}

// ModelLoaded reports whether the engine has usable artifacts.
func (e *Engine) ModelLoaded() bool {
	return e.artifacts != nil
}

// candidate is one crop considered for recommendation.
type candidate struct {
	code        int
	probability float64
}

// Recommend returns up to MaxResults crops for the profile, best first.
// It returns an empty list when the model is unavailable or the soil type is
// empty or unseen; an error means an unexpected model fault.
func (e *Engine) Recommend(ctx context.Context, profile models.FarmerProfile) ([]models.Recommendation, error) {
	recs := []models.Recommendation{}
	if e.artifacts == nil || strings.TrimSpace(profile.SoilType) == "" {
		return recs, nil
	}

	soil := strings.ToLower(strings.TrimSpace(profile.SoilType))
	code, err := e.artifacts.SoilEncoder.Transform(soil)
	if err != nil {
		slog.Info("Engine.Recommend: unknown soil type", "soilType", profile.SoilType)
		return recs, nil
	}

	probs, err := e.artifacts.Model.PredictProba([]float64{float64(code)})
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	if len(probs) != len(e.artifacts.CropEncoder.Classes) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d crop classes", len(probs), len(e.artifacts.CropEncoder.Classes))
	}

	for _, c := range topCandidates(probs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label, err := e.artifacts.CropEncoder.InverseTransform(c.code)
		if err != nil {
			return nil, fmt.Errorf("failed to decode crop: %w", err)
		}
		cropKey := strings.ToLower(label)
		meta := lookupMetadata(cropKey, profile.SoilType)

		v := applyRules(cropKey, meta, profile)
		if v.rejection != "" {
			slog.Debug("Engine.Recommend: candidate rejected", "crop", label, "reason", v.rejection)
			continue
		}
		if v.modifier != 0 {
			slog.Debug("Engine.Recommend: advisory score modifier", "crop", label, "modifier", v.modifier)
		}

		recs = append(recs, models.Recommendation{
			CropName:               capitalize(label),
			SuitabilityExplanation: fmt.Sprintf("%s (Match: %d%%)", meta.Reason, int(math.Round(c.probability*100))),
			WaterRequirement:       meta.Water,
			RiskLevel:              meta.Risk,
			Confidence:             c.probability,
			ImageURL:               meta.Image,
		})
		if len(recs) >= e.maxResults {
			break
		}
	}

	slog.Debug("Engine.Recommend: completed", "soilType", soil, "season", profile.Season, "count", len(recs))
	return recs, nil
}

// topCandidates ranks crop codes by descending probability, keeps the
// CandidatePoolSize best and drops those at or below MinProbability.
// Equal probabilities rank the higher crop code first.
func topCandidates(probs []float64) []candidate {
	all := make([]candidate, len(probs))
	for i, p := range probs {
		all[i] = candidate{code: i, probability: p}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].probability != all[j].probability {
			return all[i].probability > all[j].probability
		}
		return all[i].code > all[j].code
	})
	if len(all) > CandidatePoolSize {
		all = all[:CandidatePoolSize]
	}

	out := all[:0]
	for _, c := range all {
		if c.probability > MinProbability {
			out = append(out, c)
		}
	}
	return out
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
