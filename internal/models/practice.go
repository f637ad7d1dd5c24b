package models

import "time"

// SessionStats is the live statistics block of one practice session.
// AverageTimePerCard is in milliseconds, SessionDuration in whole seconds.
type SessionStats struct {
	TotalCards         int     `json:"total_cards"`
	CorrectCount       int     `json:"correct_count"`
	IncorrectCount     int     `json:"incorrect_count"`
	RemainingCount     int     `json:"remaining_count"`
	Accuracy           float64 `json:"accuracy"`
	AverageTimePerCard float64 `json:"average_time_per_card"`
	SessionDuration    int64   `json:"session_duration"`
	Paused             bool    `json:"paused"`
}

// Answered is the number of outcome events recorded so far.
func (s SessionStats) Answered() int {
	return s.TotalCards - s.RemainingCount
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionExited    SessionStatus = "exited"
	SessionEmpty     SessionStatus = "empty"
)

type CardSide string

const (
	SideQuestion CardSide = "question"
	SideAnswer   CardSide = "answer"
)

// PracticeCard is the current card as shown to the learner. Answer is only
// populated once the card has been revealed.
type PracticeCard struct {
	ID         string   `json:"id"`
	Side       CardSide `json:"side"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer,omitempty"`
	Difficulty int      `json:"difficulty"`
}

type PracticeView struct {
	SessionID                 string        `json:"session_id"`
	Status                    SessionStatus `json:"status"`
	Position                  int           `json:"position"`
	QueueLength               int           `json:"queue_length"`
	Card                      *PracticeCard `json:"card,omitempty"`
	Stats                     SessionStats  `json:"stats"`
	Progress                  float64       `json:"progress"`
	EstimatedRemainingSeconds int64         `json:"estimated_remaining_seconds"`
	Updating                  bool          `json:"updating"`
}

// ── Request/Response Types ───────────────────────────────

type StartPracticeRequest struct {
	OwnerID         *int64 `json:"owner_id,omitempty"`
	StudyMaterialID *int64 `json:"study_material_id,omitempty"`
	Difficulty      *int   `json:"difficulty,omitempty"`
	Search          string `json:"search,omitempty"`
	CardLimit       int    `json:"card_limit"`
}

type StartPracticeResponse struct {
	SessionID string        `json:"session_id,omitempty"`
	Token     string        `json:"token,omitempty"`
	Status    SessionStatus `json:"status"`
	Message   string        `json:"message,omitempty"`
	View      *PracticeView `json:"view,omitempty"`
}

// ActionResponse reports whether a transition was applied. Ignored
// transitions (answer hidden, paused, update in flight) return Applied=false.
type ActionResponse struct {
	Applied bool         `json:"applied"`
	View    PracticeView `json:"view"`
}

type HintResponse struct {
	Available bool   `json:"available"`
	Hint      string `json:"hint,omitempty"`
}

type ResultKind string

const (
	ResultCompleted ResultKind = "completed"
	ResultSaved     ResultKind = "saved"
)

// PracticeResult is a persisted session snapshot.
type PracticeResult struct {
	ID        int64        `json:"id"`
	SessionID string       `json:"session_id"`
	OwnerID   *int64       `json:"owner_id,omitempty"`
	Kind      ResultKind   `json:"kind"`
	Stats     SessionStats `json:"stats"`
	CreatedAt time.Time    `json:"created_at"`
}
