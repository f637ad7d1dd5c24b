package models

import "time"

// QuizQuestion is one multiple-choice question stored in a quiz's JSON
// question list.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type Quiz struct {
	ID              string         `json:"id"`
	OwnerID         int64          `json:"owner_id"`
	StudyMaterialID *int64         `json:"study_material_id,omitempty"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Questions       []QuizQuestion `json:"questions"`
	TotalAttempts   int            `json:"total_attempts"`
	BestScore       *float64       `json:"best_score,omitempty"`
	LastAttempt     *time.Time     `json:"last_attempt,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ── Request/Response Types ───────────────────────────────

type CreateQuizRequest struct {
	OwnerID         int64          `json:"owner_id"`
	StudyMaterialID *int64         `json:"study_material_id,omitempty"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Questions       []QuizQuestion `json:"questions"`
}

// QuizAttemptRequest maps question id to the chosen answer.
type QuizAttemptRequest struct {
	Answers map[string]string `json:"answers"`
}

// QuizScore is the outcome of grading one attempt.
type QuizScore struct {
	Score            float64  `json:"score"`
	TotalQuestions   int      `json:"total_questions"`
	CorrectAnswers   []string `json:"correct_answers"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type QuizAttemptResponse struct {
	QuizScore
	TotalAttempts int       `json:"total_attempts"`
	BestScore     float64   `json:"best_score"`
	LastAttempt   time.Time `json:"last_attempt"`
}

type QuizListResponse struct {
	Quizzes []Quiz `json:"quizzes"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}
