package models

// Level is a three-step qualitative rating used for water need and risk.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Recommendation is one suggested crop for a completed FarmerProfile.
type Recommendation struct {
	CropName               string  `json:"cropName"`
	SuitabilityExplanation string  `json:"suitabilityExplanation"`
	WaterRequirement       Level   `json:"waterRequirement"`
	RiskLevel              Level   `json:"riskLevel"`
	Confidence             float64 `json:"confidence"`
	ImageURL               string  `json:"imageUrl,omitempty"`
}
