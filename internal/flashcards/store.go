package flashcards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/studyaid/backend/internal/models"
)

var ErrNotFound = errors.New("flashcard not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const flashcardColumns = `id, owner_id, study_material_id, question, answer, difficulty,
	correct_answers, incorrect_answers, last_reviewed, next_review_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFlashcard(row rowScanner) (*models.Flashcard, error) {
	var f models.Flashcard
	var id int64
	var material sql.NullInt64
	var lastReviewed, nextReview sql.NullTime
	if err := row.Scan(&id, &f.OwnerID, &material, &f.Question, &f.Answer, &f.Difficulty,
		&f.CorrectAnswers, &f.IncorrectAnswers, &lastReviewed, &nextReview,
		&f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.ID = strconv.FormatInt(id, 10)
	if material.Valid {
		v := material.Int64
		f.StudyMaterialID = &v
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		f.LastReviewed = &t
	}
	if nextReview.Valid {
		t := nextReview.Time
		f.NextReviewDate = &t
	}
	return &f, nil
}

// parseID maps an API id onto the BIGSERIAL key. Malformed ids are not found.
func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrNotFound
	}
	return v, nil
}

// ── CRUD ────────────────────────────────────────────────

func (s *Store) Create(ctx context.Context, req models.CreateFlashcardRequest) (*models.Flashcard, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO flashcards (owner_id, study_material_id, question, answer, difficulty)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+flashcardColumns,
		req.OwnerID, req.StudyMaterialID, req.Question, req.Answer, req.Difficulty,
	)
	f, err := scanFlashcard(row)
	if err != nil {
		return nil, fmt.Errorf("insert flashcard: %w", err)
	}
	return f, nil
}

// CreateBatch inserts all cards in one transaction.
func (s *Store) CreateBatch(ctx context.Context, reqs []models.CreateFlashcardRequest) ([]models.Flashcard, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := make([]models.Flashcard, 0, len(reqs))
	for _, req := range reqs {
		row := tx.QueryRowContext(ctx,
			`INSERT INTO flashcards (owner_id, study_material_id, question, answer, difficulty)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING `+flashcardColumns,
			req.OwnerID, req.StudyMaterialID, req.Question, req.Answer, req.Difficulty,
		)
		f, err := scanFlashcard(row)
		if err != nil {
			return nil, fmt.Errorf("insert flashcard: %w", err)
		}
		created = append(created, *f)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit flashcards: %w", err)
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Flashcard, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+flashcardColumns+` FROM flashcards WHERE id = $1`, key)
	f, err := scanFlashcard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flashcard: %w", err)
	}
	return f, nil
}

// ListFlashcards returns one page of matching cards and the total match count.
func (s *Store) ListFlashcards(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flashcards`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count flashcards: %w", err)
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := `SELECT ` + flashcardColumns + ` FROM flashcards` + where +
		orderBy(filter.SortBy, filter.Descending) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list flashcards: %w", err)
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		f, err := scanFlashcard(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan flashcard: %w", err)
		}
		cards = append(cards, *f)
	}
	return cards, total, rows.Err()
}

func buildWhere(filter models.FlashcardFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.OwnerID != nil {
		add("owner_id = $%d", *filter.OwnerID)
	}
	if filter.StudyMaterialID != nil {
		add("study_material_id = $%d", *filter.StudyMaterialID)
	}
	if filter.Difficulty != nil {
		add("difficulty = $%d", *filter.Difficulty)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		args = append(args, pattern)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(question ILIKE $%d OR answer ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func orderBy(field models.SortField, desc bool) string {
	if !models.ValidSortFields[field] {
		field = models.SortByCreatedAt
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	// Never-reviewed cards sort first when reviewing oldest first.
	nulls := "NULLS FIRST"
	if desc {
		nulls = "NULLS LAST"
	}
	return fmt.Sprintf(" ORDER BY %s %s %s, id ASC", field, dir, nulls)
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Store) Update(ctx context.Context, id string, req models.UpdateFlashcardRequest) (*models.Flashcard, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`UPDATE flashcards SET
		    question = COALESCE($2, question),
		    answer = COALESCE($3, answer),
		    difficulty = COALESCE($4, difficulty),
		    updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+flashcardColumns,
		key, req.Question, req.Answer, req.Difficulty,
	)
	f, err := scanFlashcard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update flashcard: %w", err)
	}
	return f, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = $1`, key)
	if err != nil {
		return fmt.Errorf("delete flashcard: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ── Performance ─────────────────────────────────────────

// RecordReview applies one outcome to the card counters and logs the review
// in the same transaction.
func (s *Store) RecordReview(ctx context.Context, u models.PerformanceUpdate, reviewedAt, nextReview time.Time) error {
	key, err := parseID(u.ID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	correctInc, incorrectInc := 0, 1
	if u.IsCorrect {
		correctInc, incorrectInc = 1, 0
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE flashcards SET
		    correct_answers = correct_answers + $2,
		    incorrect_answers = incorrect_answers + $3,
		    difficulty = $4,
		    last_reviewed = $5,
		    next_review_date = $6,
		    updated_at = NOW()
		 WHERE id = $1`,
		key, correctInc, incorrectInc, u.Difficulty, reviewedAt, nextReview,
	)
	if err != nil {
		return fmt.Errorf("update flashcard performance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO flashcard_reviews (flashcard_id, correct, response_time_ms, difficulty, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		key, u.IsCorrect, u.ResponseTimeMs, u.Difficulty, reviewedAt,
	); err != nil {
		return fmt.Errorf("insert flashcard review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}
	return nil
}
