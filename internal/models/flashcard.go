package models

import (
	"math"
	"time"
)

const (
	MinDifficulty     = 1
	MaxDifficulty     = 5
	DefaultDifficulty = 3

	// MaxPageSize bounds every flashcard list query.
	MaxPageSize     = 250
	DefaultPageSize = 50
)

type Flashcard struct {
	ID               string     `json:"id"`
	OwnerID          int64      `json:"owner_id"`
	StudyMaterialID  *int64     `json:"study_material_id,omitempty"`
	Question         string     `json:"question"`
	Answer           string     `json:"answer"`
	Difficulty       int        `json:"difficulty"`
	CorrectAnswers   int        `json:"correct_answers"`
	IncorrectAnswers int        `json:"incorrect_answers"`
	LastReviewed     *time.Time `json:"last_reviewed,omitempty"`
	NextReviewDate   *time.Time `json:"next_review_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Attempts is the lifetime number of recorded answers.
func (f Flashcard) Attempts() int {
	return f.CorrectAnswers + f.IncorrectAnswers
}

// Mastery is the lifetime accuracy as a whole percentage, 0 when unseen.
func (f Flashcard) Mastery() int {
	total := f.Attempts()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(f.CorrectAnswers) / float64(total) * 100))
}

// FlashcardResponse adds derived fields for API consumers.
type FlashcardResponse struct {
	Flashcard
	Mastery int `json:"mastery"`
}

func NewFlashcardResponse(f Flashcard) FlashcardResponse {
	return FlashcardResponse{Flashcard: f, Mastery: f.Mastery()}
}

// ── Request Types ────────────────────────────────────────

type CreateFlashcardRequest struct {
	OwnerID         int64  `json:"owner_id"`
	StudyMaterialID *int64 `json:"study_material_id,omitempty"`
	Question        string `json:"question"`
	Answer          string `json:"answer"`
	Difficulty      int    `json:"difficulty"`
}

// BulkCreateRequest carries "Q: ... A: ..." text blocks, one card per pair.
type BulkCreateRequest struct {
	OwnerID         int64  `json:"owner_id"`
	StudyMaterialID *int64 `json:"study_material_id,omitempty"`
	Content         string `json:"content"`
	Difficulty      int    `json:"difficulty"`
}

type UpdateFlashcardRequest struct {
	Question   *string `json:"question,omitempty"`
	Answer     *string `json:"answer,omitempty"`
	Difficulty *int    `json:"difficulty,omitempty"`
}

// PerformanceUpdate is one recorded outcome for a card.
type PerformanceUpdate struct {
	ID             string `json:"id"`
	IsCorrect      bool   `json:"is_correct"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Difficulty     int    `json:"difficulty"`
}

type SortField string

const (
	SortByDifficulty   SortField = "difficulty"
	SortByLastReviewed SortField = "last_reviewed"
	SortByCreatedAt    SortField = "created_at"
)

var ValidSortFields = map[SortField]bool{
	SortByDifficulty:   true,
	SortByLastReviewed: true,
	SortByCreatedAt:    true,
}

type FlashcardFilter struct {
	OwnerID         *int64
	StudyMaterialID *int64
	Difficulty      *int
	Search          string
	SortBy          SortField
	Descending      bool
	Limit           int
	Offset          int
}

type FlashcardListResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
	Total      int                 `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

type BulkCreateResponse struct {
	Created []FlashcardResponse `json:"created"`
	Skipped int                 `json:"skipped"`
}
