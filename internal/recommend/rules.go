package recommend

import (
	"strings"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
)

// Score modifiers applied by the advisory rules.
const (
	zaidPenalty      = -0.5
	smallFarmPenalty = -0.2
	// smallFarmAcres is the land area below which capital-heavy crops are penalized.
	smallFarmAcres = 1.0
)

var (
	kharifExcluded = set("wheat", "barley", "gram")
	rabiExcluded   = set("rice", "paddy", "cotton", "jute")
	zaidSuited     = set("watermelon", "muskmelon", "cucumber", "maize", "fodder")
	capitalHeavy   = set("sugarcane", "cotton")
)

// verdict is the outcome of the business rules for one candidate.
// A non-empty rejection drops the candidate; modifier is advisory only.
type verdict struct {
	rejection string
	modifier  float64
}

// applyRules runs the season, irrigation and land-area rules in order.
func applyRules(cropKey string, meta CropMetadata, p models.FarmerProfile) verdict {
	var v verdict

	switch strings.ToLower(strings.TrimSpace(p.Season)) {
	case "kharif":
		if kharifExcluded[cropKey] {
			v.rejection = "Not suitable for Kharif season"
		}
	case "rabi":
		if rabiExcluded[cropKey] {
			v.rejection = "Requires high water/warmth (Kharif mainly)"
		}
	case "zaid":
		if !zaidSuited[cropKey] {
			v.modifier += zaidPenalty
		}
	}

	if p.HasIrrigation != nil && !*p.HasIrrigation && meta.Water == models.LevelHigh {
		v.rejection = "Requires high water, but irrigation is unavailable."
	}

	if p.LandArea != nil && *p.LandArea < smallFarmAcres && capitalHeavy[cropKey] {
		v.modifier += smallFarmPenalty
	}

	return v
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
