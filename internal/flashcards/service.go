package flashcards

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/studyaid/backend/internal/models"
)

var ErrInvalidInput = errors.New("invalid flashcard input")

const (
	correctReviewInterval   = 3 * 24 * time.Hour
	incorrectReviewInterval = 24 * time.Hour
)

// NextReviewDate schedules the next review: three days out after a correct
// answer, one day after a miss.
func NextReviewDate(correct bool, now time.Time) time.Time {
	if correct {
		return now.Add(correctReviewInterval)
	}
	return now.Add(incorrectReviewInterval)
}

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	Create(ctx context.Context, req models.CreateFlashcardRequest) (*models.Flashcard, error)
	CreateBatch(ctx context.Context, reqs []models.CreateFlashcardRequest) ([]models.Flashcard, error)
	Get(ctx context.Context, id string) (*models.Flashcard, error)
	ListFlashcards(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, int, error)
	Update(ctx context.Context, id string, req models.UpdateFlashcardRequest) (*models.Flashcard, error)
	Delete(ctx context.Context, id string) error
	RecordReview(ctx context.Context, u models.PerformanceUpdate, reviewedAt, nextReview time.Time) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func validDifficulty(d int) bool {
	return d >= models.MinDifficulty && d <= models.MaxDifficulty
}

func (s *Service) Create(ctx context.Context, req models.CreateFlashcardRequest) (*models.Flashcard, error) {
	req.Question = strings.TrimSpace(req.Question)
	req.Answer = strings.TrimSpace(req.Answer)
	if req.Question == "" || req.Answer == "" {
		return nil, fmt.Errorf("%w: question and answer are required", ErrInvalidInput)
	}
	if req.Difficulty == 0 {
		req.Difficulty = models.DefaultDifficulty
	}
	if !validDifficulty(req.Difficulty) {
		return nil, fmt.Errorf("%w: difficulty must be between %d and %d", ErrInvalidInput, models.MinDifficulty, models.MaxDifficulty)
	}
	return s.repo.Create(ctx, req)
}

// BulkCreate parses req.Content and inserts every complete pair.
func (s *Service) BulkCreate(ctx context.Context, req models.BulkCreateRequest) (*models.BulkCreateResponse, error) {
	difficulty := req.Difficulty
	if difficulty == 0 {
		difficulty = models.DefaultDifficulty
	}
	if !validDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: difficulty must be between %d and %d", ErrInvalidInput, models.MinDifficulty, models.MaxDifficulty)
	}

	parsed, skipped := ParseBulk(req.Content)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: no question/answer pairs found", ErrInvalidInput)
	}

	reqs := make([]models.CreateFlashcardRequest, len(parsed))
	for i, p := range parsed {
		reqs[i] = models.CreateFlashcardRequest{
			OwnerID:         req.OwnerID,
			StudyMaterialID: req.StudyMaterialID,
			Question:        p.Question,
			Answer:          p.Answer,
			Difficulty:      difficulty,
		}
	}

	created, err := s.repo.CreateBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}
	log.Printf("[flashcards] bulk created %d cards for owner %d (%d lines skipped)", len(created), req.OwnerID, skipped)

	resp := &models.BulkCreateResponse{
		Created: make([]models.FlashcardResponse, len(created)),
		Skipped: skipped,
	}
	for i, f := range created {
		resp.Created[i] = models.NewFlashcardResponse(f)
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Flashcard, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter models.FlashcardFilter) (*models.FlashcardListResponse, error) {
	if filter.SortBy != "" && !models.ValidSortFields[filter.SortBy] {
		return nil, fmt.Errorf("%w: unknown sort field %q", ErrInvalidInput, filter.SortBy)
	}
	filter.Limit, filter.Offset = pageBounds(filter.Limit, filter.Offset)

	cards, total, err := s.repo.ListFlashcards(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &models.FlashcardListResponse{
		Flashcards: make([]models.FlashcardResponse, len(cards)),
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	for i, f := range cards {
		resp.Flashcards[i] = models.NewFlashcardResponse(f)
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req models.UpdateFlashcardRequest) (*models.Flashcard, error) {
	if req.Question != nil {
		q := strings.TrimSpace(*req.Question)
		if q == "" {
			return nil, fmt.Errorf("%w: question must not be empty", ErrInvalidInput)
		}
		req.Question = &q
	}
	if req.Answer != nil {
		a := strings.TrimSpace(*req.Answer)
		if a == "" {
			return nil, fmt.Errorf("%w: answer must not be empty", ErrInvalidInput)
		}
		req.Answer = &a
	}
	if req.Difficulty != nil && !validDifficulty(*req.Difficulty) {
		return nil, fmt.Errorf("%w: difficulty must be between %d and %d", ErrInvalidInput, models.MinDifficulty, models.MaxDifficulty)
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// UpdatePerformance records one practice outcome: the matching counter is
// incremented, difficulty set, and the review dates moved forward.
func (s *Service) UpdatePerformance(ctx context.Context, u models.PerformanceUpdate) error {
	if !validDifficulty(u.Difficulty) {
		return fmt.Errorf("%w: difficulty must be between %d and %d", ErrInvalidInput, models.MinDifficulty, models.MaxDifficulty)
	}
	if u.ResponseTimeMs < 0 {
		u.ResponseTimeMs = 0
	}

	now := s.now()
	if err := s.repo.RecordReview(ctx, u, now, NextReviewDate(u.IsCorrect, now)); err != nil {
		return fmt.Errorf("record review for card %s: %w", u.ID, err)
	}
	return nil
}
