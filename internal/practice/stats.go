package practice

import (
	"math"

	"github.com/studyaid/backend/internal/models"
)

func newStats(totalCards int) models.SessionStats {
	return models.SessionStats{
		TotalCards:     totalCards,
		RemainingCount: totalCards,
	}
}

// Accuracy is correct/(correct+incorrect) as a percentage, 0 before any answer.
func Accuracy(correct, incorrect int) float64 {
	total := correct + incorrect
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// applyOutcome folds one answer into the stats: counters, remaining count,
// accuracy and the running mean of time per card.
func applyOutcome(s models.SessionStats, correct bool, cardTimeMs int64) models.SessionStats {
	answeredSoFar := float64(s.TotalCards - s.RemainingCount)
	s.AverageTimePerCard = (s.AverageTimePerCard*answeredSoFar + float64(cardTimeMs)) / (answeredSoFar + 1)

	if correct {
		s.CorrectCount++
	} else {
		s.IncorrectCount++
	}
	s.RemainingCount--
	s.Accuracy = Accuracy(s.CorrectCount, s.IncorrectCount)
	return s
}

// Progress is the share of scheduled answers already given, in percent.
func Progress(s models.SessionStats) float64 {
	if s.TotalCards == 0 {
		return 0
	}
	return (1 - float64(s.RemainingCount)/float64(s.TotalCards)) * 100
}

// EstimatedRemainingSeconds projects the average card time over what is left.
func EstimatedRemainingSeconds(s models.SessionStats) int64 {
	if s.AverageTimePerCard <= 0 {
		return 0
	}
	return int64(math.Round(s.AverageTimePerCard * float64(s.RemainingCount) / 1000))
}
