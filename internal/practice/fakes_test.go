package practice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studyaid/backend/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingUpdater struct {
	mu      sync.Mutex
	updates []models.PerformanceUpdate
	err     error
}

func (u *recordingUpdater) UpdatePerformance(_ context.Context, upd models.PerformanceUpdate) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.updates = append(u.updates, upd)
	return u.err
}

func (u *recordingUpdater) Updates() []models.PerformanceUpdate {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]models.PerformanceUpdate(nil), u.updates...)
}

func card(id string, difficulty, correct, incorrect int) models.Flashcard {
	return models.Flashcard{
		ID:               id,
		Question:         "Question " + id,
		Answer:           "Answer " + id,
		Difficulty:       difficulty,
		CorrectAnswers:   correct,
		IncorrectAnswers: incorrect,
	}
}

// newTestSession builds a session on a fake clock whose persistence runs
// synchronously.
func newTestSession(t *testing.T, cards []models.Flashcard, updater PerformanceUpdater, opts Options) (*Session, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	opts.Clock = clock
	s, err := NewSession("test-session", cards, updater, opts)
	require.NoError(t, err)
	s.dispatch = func(f func()) { f() }
	t.Cleanup(s.Close)
	return s, clock
}

// answer reveals the current card and records an outcome.
func answer(t *testing.T, s *Session, correct bool) {
	t.Helper()
	require.True(t, s.Reveal(), "reveal")
	if correct {
		require.True(t, s.MarkCorrect(), "mark correct")
	} else {
		require.True(t, s.MarkIncorrect(), "mark incorrect")
	}
}
