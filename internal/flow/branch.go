package flow

import (
	"fmt"
	"strings"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
)

// Plain-text formatting constants
const (
	// OptionFormat is the format string for a numbered option
	OptionFormat = "\n%d. %s"
	// RecommendationFormat is the format string for a numbered crop with its explanation
	RecommendationFormat = "\n%d. %s: %s"
)

// FormatText renders a response for text-only channels: the reply followed
// by the recommendations and then the options as numbered lists. The option
// numbers are what ProcessChannel accepts as answers.
func FormatText(resp models.ChatResponse) string {
	var sb strings.Builder
	sb.WriteString(resp.Reply)
	for i, rec := range resp.Recommendations {
		fmt.Fprintf(&sb, RecommendationFormat, i+1, rec.CropName, rec.SuitabilityExplanation)
	}
	for i, opt := range resp.Options {
		fmt.Fprintf(&sb, OptionFormat, i+1, opt)
	}
	return sb.String()
}
