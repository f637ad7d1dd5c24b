package practice

import "errors"

var (
	// ErrNoFlashcards means there is nothing to practice. Callers render it
	// as a terminal empty state rather than a failure.
	ErrNoFlashcards     = errors.New("practice: no flashcards to practice")
	ErrInvalidFlashcard = errors.New("practice: invalid flashcard")
	ErrSessionNotFound  = errors.New("practice: session not found")
)
