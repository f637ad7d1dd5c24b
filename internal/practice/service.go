package practice

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/studyaid/backend/internal/config"
	"github.com/studyaid/backend/internal/models"
)

// DefaultCardLimit is the number of cards drawn for a session when the
// request does not say.
const DefaultCardLimit = 20

const resultWriteTimeout = 5 * time.Second

// CardSource supplies flashcard snapshots.
type CardSource interface {
	ListFlashcards(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, int, error)
}

// ResultRecorder stores session snapshots handed to the complete/save callbacks.
type ResultRecorder interface {
	SaveResult(ctx context.Context, r models.PracticeResult) (int64, error)
	ListResults(ctx context.Context, ownerID *int64, limit, offset int) ([]models.PracticeResult, error)
}

type Service struct {
	cards   CardSource
	updater PerformanceUpdater
	results ResultRecorder
	manager *Manager
	cfg     config.PracticeConfig
	clock   Clock
}

func NewService(cards CardSource, updater PerformanceUpdater, results ResultRecorder, manager *Manager, cfg config.PracticeConfig) *Service {
	log.Printf("Practice service: tick=%v updateTimeout=%v maxRequeues=%d idleTimeout=%v",
		cfg.TickInterval, cfg.UpdateTimeout, cfg.MaxRequeuesPerCard, cfg.IdleTimeout)

	return &Service{
		cards:   cards,
		updater: updater,
		results: results,
		manager: manager,
		cfg:     cfg,
		clock:   SystemClock,
	}
}

// Start loads a snapshot matching the request and registers a new session.
// It returns ErrNoFlashcards when nothing matches.
func (s *Service) Start(ctx context.Context, req models.StartPracticeRequest) (*Session, error) {
	limit := req.CardLimit
	if limit <= 0 {
		limit = DefaultCardLimit
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}

	cards, _, err := s.cards.ListFlashcards(ctx, models.FlashcardFilter{
		OwnerID:         req.OwnerID,
		StudyMaterialID: req.StudyMaterialID,
		Difficulty:      req.Difficulty,
		Search:          req.Search,
		SortBy:          models.SortByLastReviewed,
		Limit:           limit,
	})
	if err != nil {
		return nil, fmt.Errorf("load flashcards: %w", err)
	}

	id := uuid.NewString()
	session, err := NewSession(id, cards, s.updater, Options{
		OwnerID:            req.OwnerID,
		TickInterval:       s.cfg.TickInterval,
		UpdateTimeout:      s.cfg.UpdateTimeout,
		MaxRequeuesPerCard: s.cfg.MaxRequeuesPerCard,
		Clock:              s.clock,
		OnComplete: func(stats models.SessionStats) {
			log.Printf("[practice] session %s completed: %d/%d correct in %ds",
				id, stats.CorrectCount, stats.CorrectCount+stats.IncorrectCount, stats.SessionDuration)
			s.recordResult(id, req.OwnerID, models.ResultCompleted, stats)
		},
		OnSave: func(stats models.SessionStats) {
			s.recordResult(id, req.OwnerID, models.ResultSaved, stats)
		},
		OnExit: func() {
			log.Printf("[practice] session %s exited", id)
			s.manager.Remove(id)
		},
	})
	if err != nil {
		return nil, err
	}

	s.manager.Add(session)
	log.Printf("[practice] session %s started with %d cards", id, len(cards))
	return session, nil
}

func (s *Service) Session(id string) (*Session, error) {
	return s.manager.Get(id)
}

func (s *Service) Results(ctx context.Context, ownerID *int64, limit, offset int) ([]models.PracticeResult, error) {
	if s.results == nil {
		return nil, nil
	}
	return s.results.ListResults(ctx, ownerID, limit, offset)
}

func (s *Service) recordResult(sessionID string, ownerID *int64, kind models.ResultKind, stats models.SessionStats) {
	if s.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), resultWriteTimeout)
	defer cancel()

	if _, err := s.results.SaveResult(ctx, models.PracticeResult{
		SessionID: sessionID,
		OwnerID:   ownerID,
		Kind:      kind,
		Stats:     stats,
	}); err != nil {
		log.Printf("[practice] session %s: failed to record %s result: %v", sessionID, kind, err)
	}
}
