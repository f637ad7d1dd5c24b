package practice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyaid/backend/internal/config"
	"github.com/studyaid/backend/internal/models"
)

type fakeCardSource struct {
	cards      []models.Flashcard
	err        error
	lastFilter models.FlashcardFilter
}

func (f *fakeCardSource) ListFlashcards(_ context.Context, filter models.FlashcardFilter) ([]models.Flashcard, int, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.cards, len(f.cards), nil
}

type fakeResults struct {
	mu    sync.Mutex
	saved []models.PracticeResult
}

func (f *fakeResults) SaveResult(_ context.Context, r models.PracticeResult) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, r)
	return int64(len(f.saved)), nil
}

func (f *fakeResults) ListResults(_ context.Context, ownerID *int64, limit, offset int) ([]models.PracticeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PracticeResult
	for _, r := range f.saved {
		if ownerID == nil || (r.OwnerID != nil && *r.OwnerID == *ownerID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResults) Saved() []models.PracticeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PracticeResult(nil), f.saved...)
}

func newTestService(cards *fakeCardSource, results *fakeResults) *Service {
	return NewService(cards, nil, results, NewManager(0, nil), config.PracticeConfig{})
}

func TestServiceStartBuildsFilter(t *testing.T) {
	cards := &fakeCardSource{cards: []models.Flashcard{card("1", 3, 0, 0)}}
	svc := newTestService(cards, &fakeResults{})

	owner := int64(7)
	s, err := svc.Start(context.Background(), models.StartPracticeRequest{OwnerID: &owner, Search: "capital"})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, DefaultCardLimit, cards.lastFilter.Limit)
	assert.Equal(t, models.SortByLastReviewed, cards.lastFilter.SortBy)
	assert.Equal(t, &owner, cards.lastFilter.OwnerID)
	assert.Equal(t, "capital", cards.lastFilter.Search)

	got, err := svc.Session(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestServiceStartCapsCardLimit(t *testing.T) {
	cards := &fakeCardSource{cards: []models.Flashcard{card("1", 3, 0, 0)}}
	svc := newTestService(cards, &fakeResults{})

	s, err := svc.Start(context.Background(), models.StartPracticeRequest{CardLimit: 10_000})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, models.MaxPageSize, cards.lastFilter.Limit)
}

func TestServiceStartEmpty(t *testing.T) {
	svc := newTestService(&fakeCardSource{}, &fakeResults{})

	_, err := svc.Start(context.Background(), models.StartPracticeRequest{})
	assert.ErrorIs(t, err, ErrNoFlashcards)
	assert.Equal(t, 0, svc.manager.Len())
}

func TestServiceStartSourceError(t *testing.T) {
	svc := newTestService(&fakeCardSource{err: errors.New("db down")}, &fakeResults{})

	_, err := svc.Start(context.Background(), models.StartPracticeRequest{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFlashcards)
}

func TestServiceRecordsResults(t *testing.T) {
	results := &fakeResults{}
	svc := newTestService(&fakeCardSource{cards: []models.Flashcard{card("1", 3, 0, 0)}}, results)

	owner := int64(3)
	s, err := svc.Start(context.Background(), models.StartPracticeRequest{OwnerID: &owner})
	require.NoError(t, err)
	s.dispatch = func(f func()) { f() }

	s.Save()
	require.True(t, s.Reveal())
	require.True(t, s.MarkCorrect())

	saved := results.Saved()
	require.Len(t, saved, 2)
	assert.Equal(t, models.ResultSaved, saved[0].Kind)
	assert.Equal(t, models.ResultCompleted, saved[1].Kind)
	assert.Equal(t, s.ID(), saved[1].SessionID)
	assert.Equal(t, 1, saved[1].Stats.CorrectCount)

	listed, err := svc.Results(context.Background(), &owner, 10, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestServiceExitRemovesSession(t *testing.T) {
	svc := newTestService(&fakeCardSource{cards: []models.Flashcard{card("1", 3, 0, 0)}}, &fakeResults{})

	s, err := svc.Start(context.Background(), models.StartPracticeRequest{})
	require.NoError(t, err)

	require.True(t, s.Exit())
	_, err = svc.Session(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
