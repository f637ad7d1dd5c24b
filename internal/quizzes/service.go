package quizzes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/studyaid/backend/internal/models"
)

var ErrInvalidInput = errors.New("invalid quiz input")

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	Create(ctx context.Context, req models.CreateQuizRequest) (*models.Quiz, error)
	Get(ctx context.Context, id string) (*models.Quiz, error)
	List(ctx context.Context, ownerID *int64, limit, offset int) ([]models.Quiz, int, error)
	Delete(ctx context.Context, id string) error
	RecordAttempt(ctx context.Context, id string, score float64, answers map[string]string, at time.Time) (*models.Quiz, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// normalizeQuestions trims text, numbers questions that have no id and
// rejects anything that cannot be graded.
func normalizeQuestions(questions []models.QuizQuestion) ([]models.QuizQuestion, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: a quiz needs at least one question", ErrInvalidInput)
	}

	out := make([]models.QuizQuestion, len(questions))
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			q.ID = strconv.Itoa(i + 1)
		}
		q.Question = strings.TrimSpace(q.Question)
		q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)

		switch {
		case seen[q.ID]:
			return nil, fmt.Errorf("%w: duplicate question id %s", ErrInvalidInput, q.ID)
		case q.Question == "":
			return nil, fmt.Errorf("%w: question %s has no text", ErrInvalidInput, q.ID)
		case q.CorrectAnswer == "":
			return nil, fmt.Errorf("%w: question %s has no correct answer", ErrInvalidInput, q.ID)
		case len(q.Options) > 0 && !containsOption(q.Options, q.CorrectAnswer):
			return nil, fmt.Errorf("%w: question %s correct answer is not one of its options", ErrInvalidInput, q.ID)
		}
		seen[q.ID] = true
		out[i] = q
	}
	return out, nil
}

func containsOption(options []string, answer string) bool {
	for _, o := range options {
		if strings.TrimSpace(o) == answer {
			return true
		}
	}
	return false
}

func (s *Service) Create(ctx context.Context, req models.CreateQuizRequest) (*models.Quiz, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	questions, err := normalizeQuestions(req.Questions)
	if err != nil {
		return nil, err
	}
	req.Questions = questions
	return s.repo.Create(ctx, req)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Quiz, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, ownerID *int64, limit, offset int) (*models.QuizListResponse, error) {
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	quizzes, total, err := s.repo.List(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	return &models.QuizListResponse{Quizzes: quizzes, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Attempt grades the answers and records the attempt on the quiz.
func (s *Service) Attempt(ctx context.Context, id string, answers map[string]string) (*models.QuizAttemptResponse, error) {
	quiz, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = map[string]string{}
	}

	score := Grade(quiz.Questions, answers)
	now := s.now()

	updated, err := s.repo.RecordAttempt(ctx, id, score.Score, answers, now)
	if err != nil {
		return nil, fmt.Errorf("record attempt for quiz %s: %w", id, err)
	}
	log.Printf("[quizzes] quiz %s attempt %d scored %.2f", id, updated.TotalAttempts, score.Score)

	resp := &models.QuizAttemptResponse{
		QuizScore:     score,
		TotalAttempts: updated.TotalAttempts,
		BestScore:     BestScore(quiz.BestScore, score.Score),
		LastAttempt:   now,
	}
	if updated.BestScore != nil {
		resp.BestScore = *updated.BestScore
	}
	return resp, nil
}
