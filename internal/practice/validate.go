package practice

import (
	"fmt"
	"strings"

	"github.com/studyaid/backend/internal/models"
)

// ValidateFlashcards rejects snapshot entries the engine cannot schedule.
func ValidateFlashcards(cards []models.Flashcard) error {
	seen := make(map[string]bool, len(cards))
	for i, c := range cards {
		switch {
		case strings.TrimSpace(c.ID) == "":
			return fmt.Errorf("%w: card %d has no id", ErrInvalidFlashcard, i)
		case seen[c.ID]:
			return fmt.Errorf("%w: duplicate card id %s", ErrInvalidFlashcard, c.ID)
		case strings.TrimSpace(c.Question) == "":
			return fmt.Errorf("%w: card %s has an empty question", ErrInvalidFlashcard, c.ID)
		case strings.TrimSpace(c.Answer) == "":
			return fmt.Errorf("%w: card %s has an empty answer", ErrInvalidFlashcard, c.ID)
		case c.Difficulty < models.MinDifficulty || c.Difficulty > models.MaxDifficulty:
			return fmt.Errorf("%w: card %s difficulty %d outside [%d,%d]",
				ErrInvalidFlashcard, c.ID, c.Difficulty, models.MinDifficulty, models.MaxDifficulty)
		case c.CorrectAnswers < 0 || c.IncorrectAnswers < 0:
			return fmt.Errorf("%w: card %s has negative answer counters", ErrInvalidFlashcard, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}
