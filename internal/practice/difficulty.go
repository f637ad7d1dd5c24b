package practice

import "github.com/studyaid/backend/internal/models"

// NextDifficulty moves a card one step easier on a correct answer and one
// step harder on a miss, clamped to [MinDifficulty, MaxDifficulty].
func NextDifficulty(current int, correct bool) int {
	next := current + 1
	if correct {
		next = current - 1
	}
	return clampDifficulty(next)
}

func clampDifficulty(d int) int {
	if d < models.MinDifficulty {
		return models.MinDifficulty
	}
	if d > models.MaxDifficulty {
		return models.MaxDifficulty
	}
	return d
}
