package recommend

import (
	"fmt"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
)

// CropMetadata is static reference data the classifier does not provide.
type CropMetadata struct {
	Water  models.Level
	Risk   models.Level
	Reason string
	Image  string
}

var cropMetadata = map[string]CropMetadata{
	"rice":        {models.LevelHigh, models.LevelLow, "Suitable for clayey/loamy soil with high water.", "https://images.unsplash.com/photo-1586201375761-83865001e31c?q=80&w=200"},
	"paddy":       {models.LevelHigh, models.LevelLow, "Requires standing water and clayey soil.", "https://images.unsplash.com/photo-1586201375761-83865001e31c?q=80&w=200"},
	"maize":       {models.LevelMedium, models.LevelLow, "Hardy crop, suitable for well-drained loamy soil.", "https://images.unsplash.com/photo-1551754655-cd27e38d2076?q=80&w=200"},
	"cotton":      {models.LevelMedium, models.LevelMedium, "Good for black soil, but watch for pests.", "https://images.unsplash.com/photo-1593444053930-b49d569d6600?q=80&w=200"},
	"coffee":      {models.LevelMedium, models.LevelMedium, "Needs specific altitude and shade.", "https://images.unsplash.com/photo-1552345375-f703271ae96d?q=80&w=200"},
	"jute":        {models.LevelHigh, models.LevelMedium, "Requires alluvial soil and high humidity.", "https://plus.unsplash.com/premium_photo-1661907727181-432d603a1d94?q=80&w=200"},
	"sugarcane":   {models.LevelHigh, models.LevelLow, "Long duration crop, loves deep loamy soil.", "https://images.unsplash.com/photo-1605284429718-4e11d0413008?q=80&w=200"},
	"wheat":       {models.LevelMedium, models.LevelLow, "Cool season crop, loam/clay-loam is best.", "https://images.unsplash.com/photo-1574323347407-f5e1ad6d020b?q=80&w=200"},
	"millets":     {models.LevelLow, models.LevelLow, "Drought resistant, good for poor soils.", "https://images.unsplash.com/photo-1662541810453-277180155b9a?q=80&w=200"},
	"tobacco":     {models.LevelMedium, models.LevelHigh, "Sensitive to waterlogging, needs specific processing.", "https://images.unsplash.com/photo-1534078652233-030616b24d26?q=80&w=200"},
	"barley":      {models.LevelLow, models.LevelLow, "Can tolerate saline soil better than wheat.", "https://images.unsplash.com/photo-1522003882101-7cb242407b9e?q=80&w=200"},
	"oil seeds":   {models.LevelLow, models.LevelMedium, "Diverse group, generally needs well-drained soil.", "https://images.unsplash.com/photo-1457530378979-3ec709df73c4?q=80&w=200"},
	"ground nuts": {models.LevelMedium, models.LevelMedium, "Prefers sandy loam, sensitive to aflatoxin.", "https://images.unsplash.com/photo-1622549221808-410a0827293a?q=80&w=200"},
	"pulses":      {models.LevelLow, models.LevelLow, "Nitrogen fixing, good for soil health.", "https://images.unsplash.com/photo-1515543904379-3d757afe9c6c?q=80&w=200"},
}

// lookupMetadata returns the metadata for a lowercase crop key. Unknown crops
// get a generic entry that mentions the farmer's soil.
func lookupMetadata(cropKey, soilType string) CropMetadata {
	if meta, ok := cropMetadata[cropKey]; ok {
		return meta
	}
	return CropMetadata{
		Water:  models.LevelMedium,
		Risk:   models.LevelMedium,
		Reason: fmt.Sprintf("suitable for %s soil.", soilType),
	}
}
