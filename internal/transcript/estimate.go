package transcript

import (
	"fmt"
	"math"
)

// Speech rate used to turn transcript length into spoken minutes.
const charsPerMinute = 600

// longVideoMinutes is the threshold above which a video is reported as long.
// It is coarser than the budget bands below and kept separate on purpose.
const longVideoMinutes = 15

// Chunk budgets, in model size units (roughly tokens), per duration band.
const (
	BudgetShort     = 3000 // up to 5 minutes
	BudgetMedium    = 2500 // up to 15 minutes
	BudgetLong      = 2000 // up to 30 minutes
	BudgetVeryLong  = 1500 // up to 60 minutes
	BudgetExtraLong = 1000 // beyond 60 minutes

	// DefaultBudget is used for empty transcripts.
	DefaultBudget = BudgetShort
)

// SizeEstimate describes how long a transcript is and how to chunk it.
type SizeEstimate struct {
	IsLongVideo          bool
	EstimatedMinutes     int // rounded
	RecommendedChunkSize int // budget in size units
	WarningMessage       string
}

// HasWarning reports whether the estimate carries a warning for the user.
func (e SizeEstimate) HasWarning() bool {
	return e.WarningMessage != ""
}

// Estimate derives spoken duration and a chunk budget from transcript length.
// It never fails; empty text yields zero minutes and the default budget.
func Estimate(text string) SizeEstimate {
	minutes := float64(length(text)) / charsPerMinute
	rounded := int(math.Round(minutes))

	est := SizeEstimate{
		IsLongVideo:      minutes > longVideoMinutes,
		EstimatedMinutes: rounded,
	}

	switch {
	case minutes <= 5:
		est.RecommendedChunkSize = BudgetShort
	case minutes <= 15:
		est.RecommendedChunkSize = BudgetMedium
	case minutes <= 30:
		est.RecommendedChunkSize = BudgetLong
		est.WarningMessage = fmt.Sprintf(
			"Long video (~%d min): translation will run in several parts and may take a few minutes.", rounded)
	case minutes <= 60:
		est.RecommendedChunkSize = BudgetVeryLong
		est.WarningMessage = fmt.Sprintf(
			"Very long video (~%d min): expect many parts, a long wait, and possible rate limiting.", rounded)
	default:
		est.RecommendedChunkSize = BudgetExtraLong
		est.WarningMessage = fmt.Sprintf(
			"Extremely long video (~%d min): translation may take a long time and hit provider limits; some parts may fail.", rounded)
	}

	return est
}
