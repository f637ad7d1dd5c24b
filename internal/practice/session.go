package practice

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/studyaid/backend/internal/models"
)

// PerformanceUpdater persists one card outcome.
type PerformanceUpdater interface {
	UpdatePerformance(ctx context.Context, u models.PerformanceUpdate) error
}

const defaultUpdateTimeout = 10 * time.Second

// Options configures a Session. Zero values select defaults.
type Options struct {
	OwnerID *int64

	// TickInterval drives the session duration ticker. Zero disables it.
	TickInterval time.Duration
	// UpdateTimeout bounds each persistence call. Zero means 10s.
	UpdateTimeout time.Duration
	// MaxRequeuesPerCard caps how often one card is put back in the queue
	// within a session. Zero means unbounded.
	MaxRequeuesPerCard int

	Clock Clock

	OnComplete func(models.SessionStats)
	OnSave     func(models.SessionStats)
	OnExit     func()
}

// cardState is the session's live view of a card: snapshot counters plus
// outcomes recorded in this session.
type cardState struct {
	difficulty int
	correct    int
	incorrect  int
	requeues   int
}

// Session is one adaptive practice run over a fixed flashcard snapshot.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id      string
	ownerID *int64
	cards   []models.Flashcard
	live    []cardState

	queue    []int
	cursor   int
	revealed bool

	stats       models.SessionStats
	timePerCard map[string]int64

	sessionStart time.Time
	cardStart    time.Time
	pausedAt     time.Time
	pausedTotal  time.Duration
	lastActivity time.Time

	paused    bool
	updating  bool
	completed bool
	exited    bool
	closed    bool

	failedUpdates int
	recomputes    int

	maxRequeues   int
	updateTimeout time.Duration
	clock         Clock
	updater       PerformanceUpdater
	ticker        *Ticker
	dispatch      func(func())

	onComplete func(models.SessionStats)
	onSave     func(models.SessionStats)
	onExit     func()
}

// NewSession validates the snapshot and starts a session over it. An empty
// snapshot returns ErrNoFlashcards and no session.
func NewSession(id string, cards []models.Flashcard, updater PerformanceUpdater, opts Options) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrNoFlashcards
	}
	if err := ValidateFlashcards(cards); err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	timeout := opts.UpdateTimeout
	if timeout <= 0 {
		timeout = defaultUpdateTimeout
	}

	snapshot := make([]models.Flashcard, len(cards))
	copy(snapshot, cards)

	live := make([]cardState, len(snapshot))
	for i, c := range snapshot {
		live[i] = cardState{
			difficulty: c.Difficulty,
			correct:    c.CorrectAnswers,
			incorrect:  c.IncorrectAnswers,
		}
	}

	now := clock.Now()
	s := &Session{
		id:            id,
		ownerID:       opts.OwnerID,
		cards:         snapshot,
		live:          live,
		queue:         InitialQueue(len(snapshot)),
		stats:         newStats(len(snapshot)),
		timePerCard:   make(map[string]int64, len(snapshot)),
		sessionStart:  now,
		cardStart:     now,
		lastActivity:  now,
		maxRequeues:   opts.MaxRequeuesPerCard,
		updateTimeout: timeout,
		clock:         clock,
		updater:       updater,
		dispatch:      func(f func()) { go f() },
		onComplete:    opts.OnComplete,
		onSave:        opts.OnSave,
		onExit:        opts.OnExit,
	}
	s.ticker = StartTicker(opts.TickInterval, s.Tick)

	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) OwnerID() *int64 { return s.ownerID }

// ── Session State Tracker ───────────────────────────────

// Tick refreshes the session duration. It does nothing while paused or
// once the session has ended.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.ended() {
		return
	}
	s.refreshDurationLocked(s.clock.Now())
}

func (s *Session) refreshDurationLocked(now time.Time) {
	active := now.Sub(s.sessionStart) - s.pausedTotal
	if s.paused {
		active -= now.Sub(s.pausedAt)
	}
	seconds := int64(active / time.Second)
	if seconds > s.stats.SessionDuration {
		s.stats.SessionDuration = seconds
	}
}

// TogglePause flips the paused flag and returns the new value.
func (s *Session) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended() {
		return s.paused
	}
	if s.paused {
		s.resumeLocked()
	} else {
		s.pauseLocked()
	}
	return s.paused
}

// Pause stops the clock for duration and card timing. Reports whether the
// state changed.
func (s *Session) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.ended() {
		return false
	}
	s.pauseLocked()
	return true
}

// Resume restarts the clocks. The current card's timer restarts at now.
func (s *Session) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.paused || s.ended() {
		return false
	}
	s.resumeLocked()
	return true
}

func (s *Session) pauseLocked() {
	now := s.clock.Now()
	s.refreshDurationLocked(now)
	s.paused = true
	s.pausedAt = now
	s.stats.Paused = true
	s.lastActivity = now
}

func (s *Session) resumeLocked() {
	now := s.clock.Now()
	s.pausedTotal += now.Sub(s.pausedAt)
	s.paused = false
	s.stats.Paused = false
	s.cardStart = now
	s.lastActivity = now
}

// ── Card Transitions ────────────────────────────────────

// Reveal turns the current card to its answer side.
func (s *Session) Reveal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.ended() || s.revealed {
		return false
	}
	s.revealed = true
	s.lastActivity = s.clock.Now()
	return true
}

func (s *Session) MarkCorrect() bool { return s.record(true) }

func (s *Session) MarkIncorrect() bool { return s.record(false) }

func (s *Session) canAnswerLocked() bool {
	return s.revealed && !s.paused && !s.updating && !s.ended()
}

// record applies one outcome to the current card. It is a no-op unless the
// answer is showing, the session is running and no update is in flight.
func (s *Session) record(correct bool) bool {
	s.mu.Lock()
	if !s.canAnswerLocked() {
		s.mu.Unlock()
		return false
	}

	now := s.clock.Now()
	idx := s.queue[s.cursor]
	card := s.cards[idx]

	elapsed := now.Sub(s.cardStart).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	s.timePerCard[card.ID] += elapsed
	s.stats = applyOutcome(s.stats, correct, elapsed)

	live := &s.live[idx]
	live.difficulty = NextDifficulty(live.difficulty, correct)
	if correct {
		live.correct++
	} else {
		live.incorrect++
	}

	update := models.PerformanceUpdate{
		ID:             card.ID,
		IsCorrect:      correct,
		ResponseTimeMs: elapsed,
		Difficulty:     live.difficulty,
	}
	persist := s.updater != nil
	if persist {
		s.updating = true
	}

	// A requeued entry is one more pending answer, so it extends both the
	// remaining count and the total.
	if !correct && live.incorrect > live.correct && s.canRequeue(live) {
		s.queue = append(s.queue, idx)
		live.requeues++
		s.stats.RemainingCount++
		s.stats.TotalCards++
	}

	s.advanceLocked(now)
	s.lastActivity = now

	completedNow := s.checkCompletionLocked(now)
	final := s.stats
	s.mu.Unlock()

	if persist {
		s.dispatch(func() { s.persist(update) })
	}
	if completedNow {
		s.ticker.Stop()
		if s.onComplete != nil {
			s.onComplete(final)
		}
	}
	return true
}

func (s *Session) canRequeue(c *cardState) bool {
	return s.maxRequeues == 0 || c.requeues < s.maxRequeues
}

func (s *Session) advanceLocked(now time.Time) {
	s.revealed = false
	s.cardStart = now
	s.cursor++
	if s.cursor >= len(s.queue) {
		s.queue = RankQueue(s.queue, s.weightLocked)
		s.cursor = 0
		s.recomputes++
	}
}

func (s *Session) weightLocked(idx int) float64 {
	c := s.live[idx]
	return CardWeight(c.difficulty, c.correct, c.incorrect)
}

// checkCompletionLocked moves the session to completed the first time the
// remaining count is zero and freezes it in the paused state. Reports whether
// that happened on this call.
func (s *Session) checkCompletionLocked(now time.Time) bool {
	if s.completed || s.stats.RemainingCount > 0 {
		return false
	}
	s.refreshDurationLocked(now)
	s.completed = true
	s.paused = true
	s.pausedAt = now
	s.stats.Paused = true
	return true
}

func (s *Session) persist(update models.PerformanceUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), s.updateTimeout)
	defer cancel()

	err := s.updater.UpdatePerformance(ctx, update)

	s.mu.Lock()
	s.updating = false
	if err != nil {
		s.failedUpdates++
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("[practice] session %s: failed to update card %s: %v", s.id, update.ID, err)
	}
}

// Recalculate reorders the entries still waiting behind the current card.
func (s *Session) Recalculate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended() || s.cursor+1 >= len(s.queue) {
		return false
	}
	pending := RankQueue(s.queue[s.cursor+1:], s.weightLocked)
	copy(s.queue[s.cursor+1:], pending)
	s.recomputes++
	return true
}

// Hint returns the first letter of the answer for a revealed card that has
// been missed more often than answered correctly.
func (s *Session) Hint() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.revealed || s.ended() {
		return "", false
	}
	idx := s.queue[s.cursor]
	if s.live[idx].incorrect <= s.live[idx].correct {
		return "", false
	}
	answer := strings.TrimSpace(s.cards[idx].Answer)
	r, _ := utf8.DecodeRuneInString(answer)
	if r == utf8.RuneError {
		return "", false
	}
	return fmt.Sprintf("Hint: First letter is %q", string(r)), true
}

// ── Lifecycle ───────────────────────────────────────────

// Save hands the current stats to the save callback and returns them. An
// ended session only returns its final stats.
func (s *Session) Save() models.SessionStats {
	s.mu.Lock()
	if s.ended() {
		snapshot := s.stats
		s.mu.Unlock()
		return snapshot
	}
	if !s.paused {
		s.refreshDurationLocked(s.clock.Now())
	}
	snapshot := s.stats
	s.lastActivity = s.clock.Now()
	s.mu.Unlock()

	if s.onSave != nil {
		s.onSave(snapshot)
	}
	return snapshot
}

// Exit abandons a running session. The exit callback fires once. A completed
// session keeps its status.
func (s *Session) Exit() bool {
	s.mu.Lock()
	if s.ended() {
		s.mu.Unlock()
		return false
	}
	s.exited = true
	s.mu.Unlock()

	s.ticker.Stop()
	if s.onExit != nil {
		s.onExit()
	}
	return true
}

// Close tears the session down. In-flight updates are not awaited.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.ticker.Stop()
}

func (s *Session) ended() bool {
	return s.completed || s.exited || s.closed
}

// ── Read Accessors ──────────────────────────────────────

func (s *Session) Stats() models.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() models.SessionStatus {
	switch {
	case s.exited:
		return models.SessionExited
	case s.completed:
		return models.SessionCompleted
	default:
		return models.SessionActive
	}
}

// Queue returns a copy of the adaptive queue.
func (s *Session) Queue() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := make([]int, len(s.queue))
	copy(q, s.queue)
	return q
}

// Cursor is the queue position of the current card.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Difficulty is the live difficulty of the card at snapshot index idx.
func (s *Session) Difficulty(idx int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live[idx].difficulty
}

// TimeSpent returns the accumulated milliseconds for each answered card.
func (s *Session) TimeSpent() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.timePerCard))
	for id, ms := range s.timePerCard {
		out[id] = ms
	}
	return out
}

func (s *Session) Revealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed
}

func (s *Session) Updating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updating
}

func (s *Session) FailedUpdates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedUpdates
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// View renders the session for API consumers.
func (s *Session) View() models.PracticeView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := models.PracticeView{
		SessionID:                 s.id,
		Status:                    s.statusLocked(),
		QueueLength:               len(s.queue),
		Stats:                     s.stats,
		Progress:                  Progress(s.stats),
		EstimatedRemainingSeconds: EstimatedRemainingSeconds(s.stats),
		Updating:                  s.updating,
	}

	if v.Status == models.SessionActive {
		idx := s.queue[s.cursor]
		card := s.cards[idx]
		pc := &models.PracticeCard{
			ID:         card.ID,
			Side:       models.SideQuestion,
			Question:   card.Question,
			Difficulty: s.live[idx].difficulty,
		}
		if s.revealed {
			pc.Side = models.SideAnswer
			pc.Answer = card.Answer
		}
		v.Position = s.cursor + 1
		v.Card = pc
	}
	return v
}
