package practice

import (
	"errors"
	"testing"

	"github.com/studyaid/backend/internal/models"
)

func TestValidateFlashcards(t *testing.T) {
	good := models.Flashcard{ID: "1", Question: "2+2?", Answer: "4", Difficulty: 3}

	with := func(mod func(*models.Flashcard)) models.Flashcard {
		c := good
		mod(&c)
		return c
	}

	tests := []struct {
		name    string
		cards   []models.Flashcard
		wantErr bool
	}{
		{"valid", []models.Flashcard{good, with(func(c *models.Flashcard) { c.ID = "2" })}, false},
		{"missing id", []models.Flashcard{with(func(c *models.Flashcard) { c.ID = " " })}, true},
		{"duplicate id", []models.Flashcard{good, good}, true},
		{"empty question", []models.Flashcard{with(func(c *models.Flashcard) { c.Question = "" })}, true},
		{"empty answer", []models.Flashcard{with(func(c *models.Flashcard) { c.Answer = "\t" })}, true},
		{"difficulty too low", []models.Flashcard{with(func(c *models.Flashcard) { c.Difficulty = 0 })}, true},
		{"difficulty too high", []models.Flashcard{with(func(c *models.Flashcard) { c.Difficulty = 6 })}, true},
		{"negative counter", []models.Flashcard{with(func(c *models.Flashcard) { c.IncorrectAnswers = -1 })}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlashcards(tt.cards)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFlashcard) {
					t.Errorf("err = %v, want ErrInvalidFlashcard", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
