package quizzes

import (
	"math"

	"github.com/studyaid/backend/internal/models"
)

// Grade scores answers against each question's correct answer. Unanswered
// questions count as incorrect. Score is a percentage rounded to two decimals.
func Grade(questions []models.QuizQuestion, answers map[string]string) models.QuizScore {
	result := models.QuizScore{
		TotalQuestions:   len(questions),
		CorrectAnswers:   []string{},
		IncorrectAnswers: []string{},
	}

	for _, q := range questions {
		if given, ok := answers[q.ID]; ok && given == q.CorrectAnswer {
			result.CorrectAnswers = append(result.CorrectAnswers, q.ID)
		} else {
			result.IncorrectAnswers = append(result.IncorrectAnswers, q.ID)
		}
	}

	if len(questions) > 0 {
		raw := float64(len(result.CorrectAnswers)) / float64(len(questions)) * 100
		result.Score = math.Round(raw*100) / 100
	}
	return result
}

// BestScore keeps the higher of the previous best and a new score.
func BestScore(previous *float64, score float64) float64 {
	if previous == nil {
		return score
	}
	return math.Max(*previous, score)
}
